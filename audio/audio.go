package audio

import (
	"context"
	"os"
	"path/filepath"

	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/executor"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	outputName     = "temp_audio.mp3"
	defaultBitrate = "128k"
)

// Extractor demuxes a video file into a standalone audio track inside dir.
type Extractor interface {
	Extract(ctx context.Context, videoPath, dir string) (string, error)
}

type FFmpeg struct {
	bin     string
	bitrate string
	exec    executor.Executor
}

func NewFFmpeg(bin string, exec executor.Executor) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{bin: bin, bitrate: defaultBitrate, exec: exec}
}

func (f *FFmpeg) Extract(ctx context.Context, videoPath, dir string) (string, error) {
	const op = "FFmpeg.Extract"
	out := filepath.Join(dir, outputName)
	logger := logrus.WithFields(logrus.Fields{
		"video": videoPath,
		"audio": out,
	})

	if _, err := os.Stat(videoPath); err != nil {
		return "", errors.ExtractionFailure(op, pkgerrors.Wrap(err, "video file missing"), "音频提取失败")
	}

	_, err := f.exec.Execute(ctx, f.bin,
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-b:a", f.bitrate,
		out,
	)
	if err != nil {
		logger.WithError(err).Error("Audio extraction failed")
		return "", errors.ExtractionFailure(op, err, "音频提取失败")
	}

	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		return "", errors.ExtractionFailure(op, pkgerrors.New("ffmpeg produced no audio"), "音频提取失败")
	}

	logger.Info("Audio extracted")
	return out, nil
}
