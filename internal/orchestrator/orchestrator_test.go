package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valpere/encomment/internal/annotator"
	"github.com/valpere/encomment/internal/translator"
)

type mockService struct {
	nameVal       string
	translateFunc func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error)
	callCount     atomic.Int32
	lastReq       translator.TranslateRequest
}

func (m *mockService) Name() string { return m.nameVal }

func (m *mockService) Translate(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
	m.callCount.Add(1)
	m.lastReq = req
	if m.translateFunc != nil {
		return m.translateFunc(ctx, cfg, req)
	}
	return &translator.ServiceResult{ServiceName: m.nameVal, TranslatedText: "mock result"}, nil
}

func (m *mockService) IsAvailable(ctx context.Context) error { return nil }

func (m *mockService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{"ja", "en"}, nil
}

type mockMemory struct {
	entries  map[string]string
	saved    []string
	glossary map[string]string
	lookups  int
}

func newMockMemory() *mockMemory {
	return &mockMemory{entries: make(map[string]string)}
}

func (m *mockMemory) GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error) {
	m.lookups++
	v, ok := m.entries[sourceText]
	return v, ok, nil
}

func (m *mockMemory) SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, finalText, draftText, serviceUsed string) error {
	m.entries[sourceText] = finalText
	m.saved = append(m.saved, serviceUsed)
	return nil
}

func (m *mockMemory) GetGlossaryTerms(ctx context.Context, sourceLang, targetLang string) (map[string]string, error) {
	return m.glossary, nil
}

type mockRefiner struct {
	out string
	err error
}

func (r *mockRefiner) Refine(ctx context.Context, sourceLang, targetLang, sourceText, draftText string) (string, error) {
	return r.out, r.err
}

func fastConfig() OrchestratorConfig {
	return OrchestratorConfig{
		Timeout:        5 * time.Second,
		MaxAttempts:    1,
		RetryDelay:     time.Millisecond,
		SkipValidation: true,
	}
}

func TestOrchestrator_New_Defaults(t *testing.T) {
	o := New(nil, OrchestratorConfig{})

	if o.config.MaxAttempts != 3 {
		t.Errorf("expected MaxAttempts=3, got %d", o.config.MaxAttempts)
	}
	if o.config.RetryDelay <= 0 {
		t.Error("expected positive RetryDelay")
	}
	if o.config.SourceLang != "ja" || o.config.TargetLang != "en" {
		t.Errorf("expected ja→en, got %s→%s", o.config.SourceLang, o.config.TargetLang)
	}
	if o.validator == nil {
		t.Error("expected validator to be created by default")
	}
}

func TestOrchestrator_New_SkipValidation(t *testing.T) {
	o := New(nil, OrchestratorConfig{SkipValidation: true})
	if o.validator != nil {
		t.Error("expected nil validator when SkipValidation is true")
	}
}

func TestOrchestrator_Translate_NoServices(t *testing.T) {
	o := New(nil, fastConfig())

	_, err := o.Translate(context.Background(), "設定を読み込む")
	if !errors.Is(err, ErrNoServices) {
		t.Fatalf("expected ErrNoServices, got %v", err)
	}
	if !errors.Is(err, annotator.ErrNoTranslation) {
		t.Errorf("ErrNoServices should be quiet for the annotator, got %v", err)
	}
}

func TestOrchestrator_Translate_Empty(t *testing.T) {
	o := New([]translator.TranslationService{&mockService{nameVal: "m"}}, fastConfig())

	_, err := o.Translate(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestOrchestrator_Translate_FallsThrough(t *testing.T) {
	failing := &mockService{
		nameVal: "failing",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			return nil, errors.New("service unavailable")
		},
	}
	working := &mockService{
		nameVal: "working",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			return &translator.ServiceResult{ServiceName: "working", TranslatedText: "Load the settings."}, nil
		},
	}
	o := New([]translator.TranslationService{failing, working}, fastConfig())

	got, err := o.Translate(context.Background(), "設定を読み込む")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Load the settings." {
		t.Errorf("got %q", got)
	}
	if failing.callCount.Load() != 1 || working.callCount.Load() != 1 {
		t.Errorf("calls = %d/%d, want 1/1", failing.callCount.Load(), working.callCount.Load())
	}
	if o.Stats().ByService["working"] != 1 {
		t.Errorf("expected one success for working, got %v", o.Stats().ByService)
	}
}

func TestOrchestrator_Translate_FirstSuccessWins(t *testing.T) {
	first := &mockService{nameVal: "first"}
	second := &mockService{nameVal: "second"}
	o := New([]translator.TranslationService{first, second}, fastConfig())

	if _, err := o.Translate(context.Background(), "テスト"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.callCount.Load() != 0 {
		t.Error("second service should not be called after first succeeds")
	}
}

func TestOrchestrator_Translate_AllFail(t *testing.T) {
	svc := &mockService{
		nameVal: "failing",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			return nil, errors.New("always fails")
		},
	}
	o := New([]translator.TranslationService{svc}, fastConfig())

	_, err := o.Translate(context.Background(), "テスト")
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("expected ErrAllFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "always fails") {
		t.Errorf("expected service error in message, got %v", err)
	}
	if o.Stats().Failures != 1 {
		t.Errorf("expected 1 failure, got %d", o.Stats().Failures)
	}
}

func TestOrchestrator_Execute_WithRetry(t *testing.T) {
	var count atomic.Int32
	svc := &mockService{
		nameVal: "retryable",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			if count.Add(1) < 3 {
				return &translator.ServiceResult{ServiceName: "retryable", Error: "temporary failure"}, nil
			}
			return &translator.ServiceResult{ServiceName: "retryable", TranslatedText: "success on 3rd attempt"}, nil
		},
	}
	cfg := fastConfig()
	cfg.MaxAttempts = 3
	o := New([]translator.TranslationService{svc}, cfg)

	res, err := o.Execute(context.Background(), translator.TranslateRequest{Text: "テスト"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TranslatedText != "success on 3rd attempt" {
		t.Errorf("got %q", res.TranslatedText)
	}
	if svc.callCount.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", svc.callCount.Load())
	}
}

func TestOrchestrator_Execute_Cancelled(t *testing.T) {
	svc := &mockService{
		nameVal: "slow",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	next := &mockService{nameVal: "next"}
	cfg := fastConfig()
	cfg.MaxAttempts = 3
	o := New([]translator.TranslationService{svc, next}, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Execute(ctx, translator.TranslateRequest{Text: "テスト"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if svc.callCount.Load() != 1 {
		t.Errorf("expected no retries after cancellation, got %d calls", svc.callCount.Load())
	}
	if next.callCount.Load() != 0 {
		t.Error("next service should not run after cancellation")
	}
}

func TestOrchestrator_Execute_Timeout(t *testing.T) {
	svc := &mockService{
		nameVal: "hang",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	next := &mockService{nameVal: "next"}
	cfg := fastConfig()
	cfg.Timeout = 20 * time.Millisecond
	o := New([]translator.TranslationService{svc, next}, cfg)

	res, err := o.Execute(context.Background(), translator.TranslateRequest{Text: "テスト"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ServiceName != "next" {
		t.Errorf("expected next service after timeout, got %s", res.ServiceName)
	}
}

func TestOrchestrator_Validation_MovesToNextService(t *testing.T) {
	echo := &mockService{
		nameVal: "echo",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			return &translator.ServiceResult{ServiceName: "echo", TranslatedText: req.Text}, nil
		},
	}
	good := &mockService{
		nameVal: "good",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			return &translator.ServiceResult{ServiceName: "good", TranslatedText: "Close the file."}, nil
		},
	}
	cfg := fastConfig()
	cfg.SkipValidation = false
	cfg.MaxAttempts = 2
	o := New([]translator.TranslationService{echo, good}, cfg)

	got, err := o.Translate(context.Background(), "ファイルを閉じる")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Close the file." {
		t.Errorf("got %q", got)
	}
	if echo.callCount.Load() != 1 {
		t.Errorf("validation failure should not retry, got %d calls", echo.callCount.Load())
	}
}

func TestOrchestrator_CleansOutput(t *testing.T) {
	svc := &mockService{
		nameVal: "llm",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			return &translator.ServiceResult{TranslatedText: "<think>hmm</think>\"Open the file.\""}, nil
		},
	}
	o := New([]translator.TranslationService{svc}, fastConfig())

	got, err := o.Translate(context.Background(), "ファイルを開く")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Open the file." {
		t.Errorf("got %q", got)
	}
}

func TestOrchestrator_MemoryHitSkipsServices(t *testing.T) {
	svc := &mockService{nameVal: "m"}
	mem := newMockMemory()
	mem.entries["設定を読み込む"] = "Load settings."
	o := New([]translator.TranslationService{svc}, fastConfig())
	o.SetMemory(mem)

	got, err := o.Translate(context.Background(), "  設定を読み込む ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Load settings." {
		t.Errorf("got %q", got)
	}
	if svc.callCount.Load() != 0 {
		t.Error("service should not be called on a memory hit")
	}
	if o.Stats().CacheHits != 1 {
		t.Errorf("expected 1 cache hit, got %d", o.Stats().CacheHits)
	}
}

func TestOrchestrator_MemoryHitWithoutServices(t *testing.T) {
	mem := newMockMemory()
	mem.entries["終了"] = "Done."
	o := New(nil, fastConfig())
	o.SetMemory(mem)

	got, err := o.Translate(context.Background(), "終了")
	if err != nil || got != "Done." {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestOrchestrator_SavesToMemory(t *testing.T) {
	svc := &mockService{nameVal: "m"}
	mem := newMockMemory()
	o := New([]translator.TranslationService{svc}, fastConfig())
	o.SetMemory(mem)

	if _, err := o.Translate(context.Background(), "テスト"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.entries["テスト"] != "mock result" {
		t.Errorf("expected saved translation, got %q", mem.entries["テスト"])
	}
	if len(mem.saved) != 1 || mem.saved[0] != "m" {
		t.Errorf("expected service name m, got %v", mem.saved)
	}
}

func TestOrchestrator_GlossaryAndContextPassed(t *testing.T) {
	svc := &mockService{
		nameVal: "m",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			return &translator.ServiceResult{TranslatedText: "Translated " + req.Text}, nil
		},
	}
	mem := newMockMemory()
	mem.glossary = map[string]string{"設定": "config"}
	o := New([]translator.TranslationService{svc}, fastConfig())
	o.SetMemory(mem)

	if _, err := o.Translate(context.Background(), "設定A"); err != nil {
		t.Fatal(err)
	}
	if svc.lastReq.GlossaryTerms["設定"] != "config" {
		t.Errorf("glossary not passed: %v", svc.lastReq.GlossaryTerms)
	}
	if svc.lastReq.PreviousContext != "" {
		t.Errorf("first request should have no context, got %q", svc.lastReq.PreviousContext)
	}

	if _, err := o.Translate(context.Background(), "設定B"); err != nil {
		t.Fatal(err)
	}
	if svc.lastReq.PreviousContext != "Translated 設定A" {
		t.Errorf("context = %q", svc.lastReq.PreviousContext)
	}
}

func TestOrchestrator_PlaceholdersRestored(t *testing.T) {
	svc := &mockService{
		nameVal: "m",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			if strings.Contains(req.Text, "`") {
				t.Errorf("code span reached the service: %q", req.Text)
			}
			return &translator.ServiceResult{TranslatedText: "Call [PH0] first."}, nil
		},
	}
	o := New([]translator.TranslationService{svc}, fastConfig())

	got, err := o.Translate(context.Background(), "最初に `init()` を呼ぶ")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Call `init()` first." {
		t.Errorf("got %q", got)
	}
}

func TestOrchestrator_ChunksInOrder(t *testing.T) {
	var seen []string
	svc := &mockService{
		nameVal: "m",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			seen = append(seen, req.Text)
			return &translator.ServiceResult{TranslatedText: "part" + string(rune('0'+len(seen)))}, nil
		},
	}
	cfg := fastConfig()
	cfg.MaxChars = 6
	o := New([]translator.TranslationService{svc}, cfg)

	got, err := o.Translate(context.Background(), "一行目です\n二行目です")
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != "一行目です" || seen[1] != "二行目です" {
		t.Errorf("chunks = %q", seen)
	}
	if got != "part1 part2" {
		t.Errorf("got %q", got)
	}
}

func TestOrchestrator_Refiner(t *testing.T) {
	tests := []struct {
		name    string
		refiner *mockRefiner
		want    string
	}{
		{name: "refined", refiner: &mockRefiner{out: "Refined."}, want: "Refined."},
		{name: "error keeps draft", refiner: &mockRefiner{err: errors.New("down")}, want: "mock result"},
		{name: "empty keeps draft", refiner: &mockRefiner{out: "  "}, want: "mock result"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New([]translator.TranslationService{&mockService{nameVal: "m"}}, fastConfig())
			o.SetRefiner(tt.refiner)

			got, err := o.Translate(context.Background(), "テスト")
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
