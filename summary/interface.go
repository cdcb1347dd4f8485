package summary

import (
	"context"
	"time"

	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/models"
)

type Service interface {
	// Summarize always returns a summary. A failed AI attempt is reported through
	// Result.Degradation and replaced by the extractive summary.
	Summarize(ctx context.Context, transcript, title, apiKey string) Result
}

type Config struct {
	AllowAI     bool
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	PromptChars int
}

func DefaultConfig() Config {
	return Config{
		AllowAI:     true,
		Temperature: 0.3,
		MaxTokens:   800,
		Timeout:     20 * time.Second,
		PromptChars: defaultPromptChars,
	}
}

type Result struct {
	Summary     models.Summary
	Degradation *errors.AppError
}

// Degraded reports whether the AI path was attempted and abandoned.
func (r Result) Degraded() bool {
	return r.Degradation != nil
}
