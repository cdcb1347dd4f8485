package llm

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Completer sends a single user prompt to a language model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
	Model() string
}

type Options struct {
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type Config struct {
	Provider string
	Model    string
	BaseURL  string
}

// Factory builds a Completer for a caller-supplied API key.
type Factory func(apiKey string) (Completer, error)

// NewFactory returns a Factory bound to cfg. Keys are per run, so clients are built per call.
func NewFactory(cfg Config) Factory {
	return func(apiKey string) (Completer, error) {
		return New(cfg, apiKey)
	}
}

func New(cfg Config, apiKey string) (Completer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("api key is required")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI:
		return NewOpenAIClient(apiKey, cfg.Model, cfg.BaseURL), nil
	case ProviderGemini:
		return NewGeminiClient(apiKey, cfg.Model), nil
	default:
		return nil, errors.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// withTimeout bounds ctx by timeout; an earlier caller deadline still wins.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + "..."
		}
		count++
	}
	return s
}

func redactSecret(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "[REDACTED]")
}
