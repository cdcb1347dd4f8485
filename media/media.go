package media

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/executor"
	"github.com/nijaru/yt-summary/models"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxDuration = 1800
	videoFormat        = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/mp4"
	outputTemplate     = "%(title)s.%(ext)s"

	downloadFailed = "视频下载失败"
	downloadHint   = "可能原因：1. 链接不是公开视频；2. 视频超过30分钟；3. 不支持该平台"
)

// Acquirer resolves a URL to a downloaded video file inside dir.
type Acquirer interface {
	Acquire(ctx context.Context, url, dir string) (string, models.VideoInfo, error)
}

type Config struct {
	Binary string
	// MaxDuration is the longest accepted video, in seconds.
	MaxDuration int
}

type YTDLP struct {
	config Config
	exec   executor.Executor
	logger *logrus.Logger
}

func NewYTDLP(config Config, exec executor.Executor) *YTDLP {
	if config.Binary == "" {
		config.Binary = "yt-dlp"
	}
	if config.MaxDuration <= 0 {
		config.MaxDuration = DefaultMaxDuration
	}
	return &YTDLP{config: config, exec: exec, logger: logrus.StandardLogger()}
}

// probe is the subset of `yt-dlp -J` output we read.
type probe struct {
	Title      string   `json:"title"`
	Channel    string   `json:"channel"`
	Uploader   string   `json:"uploader"`
	Duration   *float64 `json:"duration"`
	UploadDate string   `json:"upload_date"`
	IsLive     bool     `json:"is_live"`
}

func (y *YTDLP) Acquire(ctx context.Context, url, dir string) (string, models.VideoInfo, error) {
	const op = "YTDLP.Acquire"
	logger := y.logger.WithField("url", url)

	info, err := y.probe(ctx, url)
	if err != nil {
		logger.WithError(err).Error("Failed to read video metadata")
		return "", models.VideoInfo{}, failure(op, err)
	}
	if info.Duration > y.config.MaxDuration {
		logger.WithField("duration", info.Duration).Warn("Video exceeds duration limit")
		return "", info, failure(op, pkgerrors.Errorf("duration %ds exceeds limit of %ds", info.Duration, y.config.MaxDuration))
	}

	logger.WithFields(logrus.Fields{
		"title":    info.Title,
		"duration": info.Duration,
	}).Info("Downloading video")

	out, err := y.exec.Execute(ctx, y.config.Binary,
		"--no-playlist",
		"--no-warnings",
		"--quiet",
		"--no-simulate",
		"-f", videoFormat,
		"-o", filepath.Join(dir, outputTemplate),
		"--print", "after_move:filepath",
		url,
	)
	if err != nil {
		logger.WithError(err).Error("Video download failed")
		return "", info, failure(op, err)
	}

	path, err := downloadedFile(out, dir)
	if err != nil {
		return "", info, failure(op, err)
	}

	logger.WithField("path", path).Info("Video downloaded")
	return path, info, nil
}

func (y *YTDLP) probe(ctx context.Context, url string) (models.VideoInfo, error) {
	out, err := y.exec.Execute(ctx, y.config.Binary, "-J", "--no-playlist", "--no-warnings", url)
	if err != nil {
		return models.VideoInfo{}, err
	}
	return parseProbe([]byte(out), url)
}

func parseProbe(data []byte, url string) (models.VideoInfo, error) {
	var p probe
	if err := json.Unmarshal(data, &p); err != nil {
		return models.VideoInfo{}, pkgerrors.Wrap(err, "decode yt-dlp metadata")
	}

	info := models.VideoInfo{
		Title:      strings.TrimSpace(p.Title),
		Channel:    strings.TrimSpace(p.Channel),
		UploadDate: p.UploadDate,
		SourceURL:  url,
	}
	if info.Title == "" {
		info.Title = models.UnknownTitle
	}
	if info.Channel == "" {
		info.Channel = strings.TrimSpace(p.Uploader)
	}
	if info.Channel == "" {
		info.Channel = models.UnknownChannel
	}
	if p.Duration != nil && *p.Duration > 0 {
		info.Duration = int(math.Round(*p.Duration))
	}
	return info, nil
}

// downloadedFile takes the last path yt-dlp printed, falling back to the
// newest file in dir.
func downloadedFile(output, dir string) (string, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if last := strings.TrimSpace(lines[len(lines)-1]); last != "" {
		if _, err := os.Stat(last); err == nil {
			return last, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", pkgerrors.Wrap(err, "read workspace")
	}
	var newest string
	var newestMod int64
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".part") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		if mod := fi.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest, newestMod = filepath.Join(dir, e.Name()), mod
		}
	}
	if newest == "" {
		return "", pkgerrors.New("yt-dlp produced no file")
	}
	return newest, nil
}

func failure(op string, err error) *errors.AppError {
	return errors.AcquisitionFailure(op, err, downloadFailed).WithHint(downloadHint)
}
