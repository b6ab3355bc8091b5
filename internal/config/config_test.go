package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "encomment.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Source != "ja" || cfg.Target != "en" {
		t.Errorf("expected ja→en, got %s→%s", cfg.Source, cfg.Target)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("expected MaxRetries=3, got %d", cfg.MaxRetries)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("expected 60s timeout, got %v", cfg.Timeout)
	}
	if len(cfg.Services) != 0 {
		t.Errorf("expected no services by default, got %v", cfg.Services)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected info log level, got %q", cfg.Log.Level)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
services: [ollama, google]
max_chars: 400
timeout: 15s
log:
  level: debug
ollama:
  url: http://gpu-box:11434
  models: [qwen3:14b]
google:
  project: my-project
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(cfg.Services, []string{"ollama", "google"}) {
		t.Errorf("services = %v", cfg.Services)
	}
	if cfg.MaxChars != 400 || cfg.Timeout != 15*time.Second {
		t.Errorf("max_chars=%d timeout=%v", cfg.MaxChars, cfg.Timeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Ollama.URL != "http://gpu-box:11434" || !reflect.DeepEqual(cfg.Ollama.Models, []string{"qwen3:14b"}) {
		t.Errorf("ollama = %+v", cfg.Ollama)
	}
	if cfg.Google.Project != "my-project" {
		t.Errorf("google = %+v", cfg.Google)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	if err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "services: [google]\nsystran:\n  key: from-file\n")
	t.Setenv("ENCOMMENT_SERVICES", "mymemory,ollama")
	t.Setenv("ENCOMMENT_SYSTRAN_KEY", "from-env")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(cfg.Services, []string{"mymemory", "ollama"}) {
		t.Errorf("services = %v", cfg.Services)
	}
	if cfg.Systran.Key != "from-env" {
		t.Errorf("systran key = %q", cfg.Systran.Key)
	}
}

func TestLoad_Flags(t *testing.T) {
	path := writeConfig(t, "target: de\nmax_retries: 5\n")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--target", "fr", "--no-cache", "--ollama-url", "http://x:1"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, fs)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Target != "fr" {
		t.Errorf("flag should win over file, got target %q", cfg.Target)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("unset flag should not override file, got %d", cfg.MaxRetries)
	}
	if !cfg.NoCache {
		t.Error("expected NoCache from flag")
	}
	if cfg.Ollama.URL != "http://x:1" {
		t.Errorf("ollama url = %q", cfg.Ollama.URL)
	}
}

func TestRegisterFlags_AllKeysBound(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)

	for name := range flagKeys {
		if fs.Lookup(name) == nil {
			t.Errorf("flag %q has a key but is not registered", name)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"google, ollama", "", " systran "})
	want := []string{"google", "ollama", "systran"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitList = %v, want %v", got, want)
	}
}
