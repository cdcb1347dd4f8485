package cli

import (
	"github.com/nijaru/yt-summary/audio"
	"github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/executor"
	"github.com/nijaru/yt-summary/llm"
	"github.com/nijaru/yt-summary/media"
	"github.com/nijaru/yt-summary/pipeline"
	"github.com/nijaru/yt-summary/report"
	"github.com/nijaru/yt-summary/summary"
	"github.com/nijaru/yt-summary/transcription"
)

func newRunner(cfg *config.Config) *pipeline.Runner {
	exec := executor.New()

	loader := transcription.NewModelLoader(transcription.LoaderConfig{
		Binary:       cfg.Whisper.Binary,
		ModelName:    cfg.Whisper.Model,
		ModelDir:     cfg.Whisper.ModelDir,
		ModelBaseURL: cfg.Whisper.ModelURL,
		Device:       cfg.Whisper.Device,
		Threads:      cfg.Whisper.Threads,
	}, exec)

	summarizer := summary.NewService(summary.Config{
		AllowAI:     cfg.Summary.AllowAI,
		Temperature: float32(cfg.Summary.Temperature),
		MaxTokens:   cfg.Summary.MaxTokens,
		Timeout:     cfg.Summary.Timeout,
		PromptChars: cfg.Summary.PromptChars,
	}, llm.NewFactory(llm.Config{
		Provider: cfg.Summary.Provider,
		Model:    cfg.Summary.Model,
		BaseURL:  cfg.Summary.BaseURL,
	}))

	return pipeline.New(pipeline.Deps{
		Acquirer: media.NewYTDLP(media.Config{
			Binary:      cfg.Pipeline.YTDLPPath,
			MaxDuration: cfg.Pipeline.MaxDuration,
		}, exec),
		Extractor:   audio.NewFFmpeg(cfg.Pipeline.FFmpegPath, exec),
		Transcriber: transcription.NewTranscriptionService(loader, exec, cfg.Whisper.Language),
		Summarizer:  summarizer,
		Formatter:   report.NewFormatter(),
	}, pipeline.Config{
		TempDir: cfg.Pipeline.TempDir,
		Timeout: cfg.Pipeline.Timeout,
	})
}
