package summary

import (
	"context"
	"strings"

	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/llm"
	"github.com/nijaru/yt-summary/models"
	"github.com/sirupsen/logrus"
)

type service struct {
	config       Config
	newCompleter llm.Factory
	logger       *logrus.Logger
}

// NewService creates a summary service. newCompleter may be nil when AI summaries
// are never wanted.
func NewService(config Config, newCompleter llm.Factory) Service {
	if config.PromptChars <= 0 {
		config.PromptChars = defaultPromptChars
	}
	return &service{
		config:       config,
		newCompleter: newCompleter,
		logger:       logrus.StandardLogger(),
	}
}

// completion is the outcome of one AI attempt.
type completion struct {
	content string
	model   string
	err     error
}

func (c completion) ok() bool {
	return c.err == nil
}

func (s *service) Summarize(ctx context.Context, transcript, title, apiKey string) Result {
	const op = "SummaryService.Summarize"
	logger := s.logger.WithFields(logrus.Fields{
		"title":          title,
		"transcript_len": len(transcript),
	})

	base := Extract(transcript)

	if !s.aiEnabled(apiKey) {
		logger.WithField("sentences", len(base.KeyPoints)).Debug("Using extractive summary")
		return Result{Summary: base}
	}

	c := s.complete(ctx, transcript, title, apiKey)
	if !c.ok() {
		logger.WithError(c.err).Warn("AI summary failed, falling back to extractive summary")
		return Result{
			Summary:     base,
			Degradation: errors.SummaryDegradation(op, c.err, "AI总结失败，自动使用快速提取总结"),
		}
	}

	logger.WithField("model", c.model).Info("AI summary generated")
	return Result{
		Summary: models.Summary{
			Body:      c.content,
			KeyPoints: ParseKeyPoints(c.content),
			Method:    models.MethodAI,
			Model:     c.model,
		},
	}
}

func (s *service) aiEnabled(apiKey string) bool {
	return s.config.AllowAI && s.newCompleter != nil && strings.TrimSpace(apiKey) != ""
}

func (s *service) complete(ctx context.Context, transcript, title, apiKey string) (c completion) {
	defer func() {
		if rec := recover(); rec != nil {
			c = completion{err: errors.Internal("SummaryService.complete", nil, "panic during AI summary")}
			s.logger.WithField("panic", rec).Error("Recovered panic in AI summary")
		}
	}()

	completer, err := s.newCompleter(strings.TrimSpace(apiKey))
	if err != nil {
		return completion{err: err}
	}

	content, err := completer.Complete(ctx, buildPrompt(title, transcript, s.config.PromptChars), llm.Options{
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
		Timeout:     s.config.Timeout,
	})
	if err != nil {
		return completion{err: err, model: completer.Model()}
	}

	if strings.TrimSpace(content) == "" {
		return completion{err: errors.Internal("SummaryService.complete", nil, "empty AI response"), model: completer.Model()}
	}

	return completion{content: content, model: completer.Model()}
}
