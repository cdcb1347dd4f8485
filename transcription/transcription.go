package transcription

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/executor"
	"github.com/nijaru/yt-summary/models"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultLanguage = "zh"
	outputPrefix    = "whisper"
)

// Transcriber converts an audio file into text plus time-stamped segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, dir string) (models.Transcript, error)
}

type TranscriptionService struct {
	loader   *ModelLoader
	exec     executor.Executor
	language string

	ReadFileFunc func(filename string) ([]byte, error)
}

func NewTranscriptionService(loader *ModelLoader, exec executor.Executor, language string) *TranscriptionService {
	if language == "" {
		language = DefaultLanguage
	}
	return &TranscriptionService{
		loader:       loader,
		exec:         exec,
		language:     language,
		ReadFileFunc: os.ReadFile,
	}
}

func (s *TranscriptionService) Transcribe(ctx context.Context, audioPath, dir string) (models.Transcript, error) {
	const op = "TranscriptionService.Transcribe"

	model, err := s.loader.Load(ctx)
	if err != nil {
		logrus.WithError(err).Error("Transcription model unavailable")
		return models.Transcript{}, errors.TranscriptionFailure(op, err, "语音识别模型加载失败")
	}

	prefix := filepath.Join(dir, outputPrefix)
	args := []string{
		"-m", model.Path,
		"-f", audioPath,
		"-l", s.language,
		"-t", strconv.Itoa(model.Threads),
		"-oj",
		"-of", prefix,
		"-np",
	}
	if !model.UsesGPU() {
		args = append(args, "-ng")
	}

	logger := logrus.WithFields(logrus.Fields{
		"audio":  audioPath,
		"device": model.Device,
	})
	logger.Info("Starting transcription")

	if _, err := s.exec.Execute(ctx, model.Binary, args...); err != nil {
		logger.WithError(err).Error("whisper.cpp failed")
		return models.Transcript{}, errors.TranscriptionFailure(op, err, "语音转文字失败")
	}

	data, err := s.ReadFileFunc(prefix + ".json")
	if err != nil {
		return models.Transcript{}, errors.TranscriptionFailure(op, pkgerrors.Wrap(err, "read whisper output"), "语音转文字失败")
	}

	transcript, err := parseWhisperJSON(data)
	if err != nil {
		return models.Transcript{}, errors.TranscriptionFailure(op, err, "语音转文字失败")
	}

	if transcript.FullText == "" {
		logger.Warn("Transcription produced no text")
	}
	logger.WithField("segments", len(transcript.Segments)).Info("Transcription completed")
	return transcript, nil
}

type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// parseWhisperJSON reads whisper.cpp -oj output. Offsets are milliseconds.
func parseWhisperJSON(data []byte) (models.Transcript, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return models.Transcript{}, pkgerrors.Wrap(err, "decode whisper output")
	}

	var full strings.Builder
	segments := make([]models.Segment, 0, len(out.Transcription))
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		full.WriteString(text)
		segments = append(segments, models.Segment{
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
			Text:  text,
		})
	}

	return models.Transcript{FullText: full.String(), Segments: segments}, nil
}
