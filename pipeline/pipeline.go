package pipeline

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nijaru/yt-summary/audio"
	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/media"
	"github.com/nijaru/yt-summary/models"
	"github.com/nijaru/yt-summary/report"
	"github.com/nijaru/yt-summary/summary"
	"github.com/nijaru/yt-summary/transcription"
	"github.com/nijaru/yt-summary/validation"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Progress checkpoints shown while a run is in flight.
var (
	StageDownload   = Progress{Fraction: 0.2, Message: "正在下载视频..."}
	StageTranscribe = Progress{Fraction: 0.5, Message: "正在提取音频并转文字..."}
	StageSummarize  = Progress{Fraction: 0.8, Message: "正在生成总结..."}
	StageDone       = Progress{Fraction: 1.0, Message: "处理完成！"}
)

type Progress struct {
	Fraction float64 `json:"fraction"`
	Message  string  `json:"message"`
}

type ProgressFunc func(Progress)

type Deps struct {
	Acquirer    media.Acquirer
	Extractor   audio.Extractor
	Transcriber transcription.Transcriber
	Summarizer  summary.Service
	Formatter   *report.Formatter
}

type Config struct {
	// TempDir is where per-run workspaces are created.
	TempDir string
	Timeout time.Duration
}

type Request struct {
	URL      string
	APIKey   string
	Progress ProgressFunc
}

type Result struct {
	Report     *models.Report
	Transcript models.Transcript
	Warnings   []string
	Progress   []string
}

// Runner drives one video through download, audio extraction, transcription
// and summarization. Only one run executes at a time.
type Runner struct {
	deps   Deps
	config Config
	slot   chan struct{}
	now    func() time.Time
}

func New(deps Deps, config Config) *Runner {
	if deps.Formatter == nil {
		deps.Formatter = report.NewFormatter()
	}
	return &Runner{
		deps:   deps,
		config: config,
		slot:   make(chan struct{}, 1),
		now:    time.Now,
	}
}

func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	const op = "Runner.Run"

	url := strings.TrimSpace(req.URL)
	if err := validation.ValidateURL(url); err != nil {
		return nil, err
	}
	if err := validation.ValidateAPIKey(req.APIKey); err != nil {
		return nil, err
	}

	select {
	case r.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, errors.Busy(op, ctx.Err(), "已有视频正在处理，请稍后再试")
	}
	defer func() { <-r.slot }()

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	if r.config.TempDir != "" {
		if err := os.MkdirAll(r.config.TempDir, 0o755); err != nil {
			return nil, errors.Internal(op, pkgerrors.Wrap(err, "create temp dir"), "无法创建临时目录")
		}
	}
	workspace, err := os.MkdirTemp(r.config.TempDir, "run-*")
	if err != nil {
		return nil, errors.Internal(op, pkgerrors.Wrap(err, "create workspace"), "无法创建临时目录")
	}
	logger := logrus.WithFields(logrus.Fields{
		"url":       url,
		"workspace": workspace,
	})
	defer func() {
		if err := os.RemoveAll(workspace); err != nil {
			logger.WithError(err).Error("Failed to remove workspace")
		}
	}()

	res := &Result{}
	step := func(p Progress) {
		res.Progress = append(res.Progress, p.Message)
		if req.Progress != nil {
			req.Progress(p)
		}
	}

	start := r.now()
	logger.Info("Pipeline started")

	step(StageDownload)
	videoPath, info, err := r.deps.Acquirer.Acquire(ctx, url, workspace)
	if err != nil {
		return nil, stageError(op, err, errors.KindAcquisition, "视频下载失败")
	}

	step(StageTranscribe)
	audioPath, err := r.deps.Extractor.Extract(ctx, videoPath, workspace)
	if err != nil {
		return nil, stageError(op, err, errors.KindExtraction, "音频提取失败")
	}
	transcript, err := r.deps.Transcriber.Transcribe(ctx, audioPath, workspace)
	if err != nil {
		return nil, stageError(op, err, errors.KindTranscription, "语音转文字失败")
	}
	res.Transcript = transcript

	step(StageSummarize)
	sum := r.deps.Summarizer.Summarize(ctx, transcript.FullText, info.Title, strings.TrimSpace(req.APIKey))
	if sum.Degraded() {
		res.Warnings = append(res.Warnings, sum.Degradation.Message)
	}

	res.Report = &models.Report{
		ID:        uuid.NewString(),
		Title:     info.Title,
		FileName:  report.FileName(info.Title),
		Markdown:  r.deps.Formatter.Format(sum.Summary, info, transcript),
		Summary:   sum.Summary,
		Video:     info,
		CreatedAt: r.now(),
	}

	step(StageDone)
	logger.WithFields(logrus.Fields{
		"report_id": res.Report.ID,
		"method":    sum.Summary.Method,
		"duration":  r.now().Sub(start).String(),
	}).Info("Pipeline finished")
	return res, nil
}

// stageError keeps stage errors that already carry a kind and wraps the rest.
func stageError(op string, err error, kind errors.Kind, message string) error {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return errors.E(kind, op, err, message)
}
