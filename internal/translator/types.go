// Package translator holds the external translation services that turn a
// Japanese comment into English.
package translator

import (
	"context"
	"time"
)

const (
	DefaultSourceLang = "ja"
	DefaultTargetLang = "en"
)

type ServiceConfig struct {
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	Model       string        `mapstructure:"model" json:"model"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	ProjectID   string        `mapstructure:"project_id" json:"project_id"`
}

type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`

	// PreviousContext is the tail of the previously translated comment.
	// LLM services show it to the model; others ignore it.
	PreviousContext string `json:"previous_context,omitempty"`
	// GlossaryTerms maps source terms to required translations.
	GlossaryTerms map[string]string `json:"glossary_terms,omitempty"`
}

type ServiceResult struct {
	ServiceName    string            `json:"service_name"`
	TranslatedText string            `json:"translated_text"`
	Confidence     float64           `json:"confidence"`
	Metadata       map[string]string `json:"metadata"`
	Latency        time.Duration     `json:"latency"`
	Error          string            `json:"error,omitempty"`
}

type TranslationService interface {
	Name() string
	Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error)
	IsAvailable(ctx context.Context) error
	SupportedLanguages(ctx context.Context) ([]string, error)
}

func sourceOrDefault(lang string) string {
	if lang == "" || lang == "auto" {
		return DefaultSourceLang
	}
	return lang
}

func targetOrDefault(lang string) string {
	if lang == "" {
		return DefaultTargetLang
	}
	return lang
}
