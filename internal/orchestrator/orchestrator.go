// Package orchestrator drives the translation services for the annotator.
// Services are tried one after another until one returns a usable English
// comment; translation memory, glossary, placeholders, chunking,
// validation and refinement all happen here.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/valpere/encomment/internal/annotator"
	"github.com/valpere/encomment/internal/chunker"
	"github.com/valpere/encomment/internal/logger"
	"github.com/valpere/encomment/internal/placeholder"
	"github.com/valpere/encomment/internal/postprocess"
	"github.com/valpere/encomment/internal/refiner"
	"github.com/valpere/encomment/internal/translator"
	"github.com/valpere/encomment/internal/validator"
)

var (
	// ErrNoServices is returned when the chain has nothing to try.
	ErrNoServices = fmt.Errorf("no translation services configured: %w", annotator.ErrNoTranslation)
	// ErrAllFailed wraps the per-service errors of an exhausted chain.
	ErrAllFailed = errors.New("all translation services failed")
	ErrEmptyText = errors.New("empty text")
)

type OrchestratorConfig struct {
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
	// MaxChars splits longer texts into chunks; 0 disables chunking.
	MaxChars       int
	SourceLang     string
	TargetLang     string
	SkipValidation bool
	ContextWords   int
	Service        translator.ServiceConfig
}

// Memory is the part of the store the orchestrator needs.
type Memory interface {
	GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error)
	SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, finalText, draftText, serviceUsed string) error
	GetGlossaryTerms(ctx context.Context, sourceLang, targetLang string) (map[string]string, error)
}

// Stats counts what happened across Translate calls.
type Stats struct {
	Requests  int
	CacheHits int
	Failures  int
	// ByService counts successful chunk translations per service name.
	ByService map[string]int
}

type Orchestrator struct {
	services  []translator.TranslationService
	config    OrchestratorConfig
	validator *validator.Validator
	memory    Memory
	refiner   refiner.Refiner
	log       *charmlog.Logger

	glossary       map[string]string
	glossaryLoaded bool
	prevContext    string
	stats          Stats
}

func New(services []translator.TranslationService, config OrchestratorConfig) *Orchestrator {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 500 * time.Millisecond
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.SourceLang == "" {
		config.SourceLang = translator.DefaultSourceLang
	}
	if config.TargetLang == "" {
		config.TargetLang = translator.DefaultTargetLang
	}
	if config.ContextWords <= 0 {
		config.ContextWords = chunker.DefaultContextWords
	}

	o := &Orchestrator{
		services: services,
		config:   config,
		log:      logger.Discard(),
		stats:    Stats{ByService: make(map[string]int)},
	}
	if !config.SkipValidation {
		o.validator = validator.New()
	}
	return o
}

// SetMemory enables the translation memory and glossary.
func (o *Orchestrator) SetMemory(m Memory) { o.memory = m }

func (o *Orchestrator) SetRefiner(r refiner.Refiner) { o.refiner = r }

func (o *Orchestrator) SetLogger(l *charmlog.Logger) {
	if l != nil {
		o.log = l
	}
}

// Stats returns a copy of the counters.
func (o *Orchestrator) Stats() Stats {
	s := o.stats
	s.ByService = make(map[string]int, len(o.stats.ByService))
	for k, v := range o.stats.ByService {
		s.ByService[k] = v
	}
	return s
}

// Translate turns one comment text into a single English string.
func (o *Orchestrator) Translate(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	o.stats.Requests++
	src, tgt := o.config.SourceLang, o.config.TargetLang

	if o.memory != nil {
		cached, ok, err := o.memory.GetCachedTranslation(ctx, text, src, tgt)
		if err != nil {
			o.log.Warn("translation memory lookup failed", "err", err)
		} else if ok {
			o.stats.CacheHits++
			o.log.Debug("translation memory hit", "text", text)
			o.prevContext = chunker.ExtractContext(cached, o.config.ContextWords)
			return cached, nil
		}
	}

	if len(o.services) == 0 {
		o.stats.Failures++
		return "", ErrNoServices
	}

	protected, markers := placeholder.Protect(text)
	chunks := chunker.Chunk(protected, o.config.MaxChars)
	glossary := o.glossaryTerms(ctx)

	parts := make([]string, 0, len(chunks))
	services := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		res, err := o.Execute(ctx, translator.TranslateRequest{
			Text:            chunk,
			SourceLang:      src,
			TargetLang:      tgt,
			PreviousContext: o.prevContext,
			GlossaryTerms:   glossary,
		})
		if err != nil {
			o.stats.Failures++
			return "", err
		}
		parts = append(parts, res.TranslatedText)
		services = append(services, res.ServiceName)
		o.prevContext = chunker.ExtractContext(res.TranslatedText, o.config.ContextWords)
	}

	joined := strings.Join(parts, " ")
	if missing := placeholder.Validate(joined, markers); len(missing) > 0 {
		o.log.Warn("placeholders lost in translation", "missing", missing)
	}
	draft := placeholder.Restore(joined, markers)
	final := draft

	if o.refiner != nil {
		refined, err := o.refiner.Refine(ctx, src, tgt, text, draft)
		switch {
		case err != nil:
			o.log.Warn("refinement failed, keeping draft", "err", err)
		case strings.TrimSpace(refined) != "":
			final = refined
		}
	}

	if o.memory != nil {
		if err := o.memory.SaveToMemory(ctx, text, src, tgt, final, draft, strings.Join(dedupe(services), ",")); err != nil {
			o.log.Warn("failed to save translation memory", "err", err)
		}
	}

	return final, nil
}

// Execute sends req to each service in order. Each service gets up to
// MaxAttempts tries, each bounded by Timeout. A result that fails
// validation moves on to the next service without retrying.
func (o *Orchestrator) Execute(ctx context.Context, req translator.TranslateRequest) (*translator.ServiceResult, error) {
	if len(o.services) == 0 {
		return nil, ErrNoServices
	}

	var errs []error
	for _, svc := range o.services {
		res, err := o.try(ctx, svc, req)
		if err == nil {
			o.stats.ByService[res.ServiceName]++
			return res, nil
		}
		o.log.Debug("service failed", "service", svc.Name(), "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", svc.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrAllFailed, errors.Join(errs...))
}

func (o *Orchestrator) try(ctx context.Context, svc translator.TranslationService, req translator.TranslateRequest) (*translator.ServiceResult, error) {
	var lastErr error
	for attempt := 1; attempt <= o.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.config.RetryDelay):
			}
		}

		res, err := o.attempt(ctx, svc, req)
		if err == nil {
			res.TranslatedText = postprocess.Clean(res.TranslatedText)
			if res.TranslatedText == "" {
				lastErr = errors.New("empty translation")
				continue
			}
			if o.validator != nil {
				if ok, verr := o.validator.IsValid(res.TranslatedText, req.TargetLang); !ok {
					return nil, fmt.Errorf("validation failed: %w", verr)
				}
			}
			if res.ServiceName == "" {
				res.ServiceName = svc.Name()
			}
			return res, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.log.Debug("attempt failed", "service", svc.Name(), "attempt", attempt, "err", err)
	}
	return nil, lastErr
}

func (o *Orchestrator) attempt(ctx context.Context, svc translator.TranslationService, req translator.TranslateRequest) (*translator.ServiceResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	res, err := svc.Translate(attemptCtx, o.config.Service, req)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.New("no result")
	}
	if res.Error != "" {
		return nil, errors.New(res.Error)
	}
	return res, nil
}

func (o *Orchestrator) glossaryTerms(ctx context.Context) map[string]string {
	if o.glossaryLoaded || o.memory == nil {
		return o.glossary
	}
	o.glossaryLoaded = true
	terms, err := o.memory.GetGlossaryTerms(ctx, o.config.SourceLang, o.config.TargetLang)
	if err != nil {
		o.log.Warn("failed to load glossary", "err", err)
		return nil
	}
	if len(terms) > 0 {
		o.glossary = terms
	}
	return o.glossary
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
