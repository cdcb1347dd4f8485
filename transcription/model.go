package transcription

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/nijaru/yt-summary/executor"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DeviceAuto = "auto"
	DeviceCUDA = "cuda"
	DeviceCPU  = "cpu"

	defaultModelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"
	maxDefaultThreads   = 8
	loadTimeout         = 30 * time.Minute
)

// Model is the resolved, read-only handle shared by every transcription.
type Model struct {
	Binary  string
	Path    string
	Name    string
	Device  string
	Threads int
}

func (m *Model) UsesGPU() bool {
	return m.Device == DeviceCUDA
}

type LoaderConfig struct {
	Binary       string
	ModelName    string
	ModelDir     string
	ModelBaseURL string
	Device       string
	Threads      int
}

// ModelLoader resolves the Model once per process. Only a successful load is
// kept; a failed load is retried by the next caller.
type ModelLoader struct {
	config LoaderConfig
	exec   executor.Executor

	LookPathFunc func(name string) (string, error)
	DownloadFunc func(ctx context.Context, url, dest string) error

	mu    sync.Mutex
	model *Model
}

func NewModelLoader(config LoaderConfig, exec executor.Executor) *ModelLoader {
	if config.Binary == "" {
		config.Binary = "whisper-cli"
	}
	if config.ModelName == "" {
		config.ModelName = "base"
	}
	if config.ModelDir == "" {
		config.ModelDir = filepath.Join(os.TempDir(), "yt-summary", "models")
	}
	if config.ModelBaseURL == "" {
		config.ModelBaseURL = defaultModelBaseURL
	}
	if config.Device == "" {
		config.Device = DeviceAuto
	}
	return &ModelLoader{
		config:       config,
		exec:         exec,
		LookPathFunc: executor.LookPath,
		DownloadFunc: downloadFile,
	}
}

// Load returns the shared model, loading it on first use. The load is not
// bound to the caller's cancellation since other callers wait on it.
func (l *ModelLoader) Load(ctx context.Context) (*Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.model != nil {
		return l.model, nil
	}

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
	defer cancel()

	m, err := l.load(loadCtx)
	if err != nil {
		return nil, err
	}
	l.model = m
	return m, nil
}

func (l *ModelLoader) load(ctx context.Context) (*Model, error) {
	start := time.Now()

	bin, err := l.LookPathFunc(l.config.Binary)
	if err != nil {
		return nil, errors.Wrap(err, "whisper.cpp binary")
	}

	path, err := l.ensureModelFile(ctx)
	if err != nil {
		return nil, err
	}

	m := &Model{
		Binary:  bin,
		Path:    path,
		Name:    l.config.ModelName,
		Device:  l.detectDevice(ctx),
		Threads: l.config.Threads,
	}
	if m.Threads <= 0 {
		m.Threads = min(runtime.NumCPU(), maxDefaultThreads)
	}

	logrus.WithFields(logrus.Fields{
		"model":    m.Name,
		"path":     m.Path,
		"device":   m.Device,
		"threads":  m.Threads,
		"duration": time.Since(start).String(),
	}).Info("Transcription model loaded")
	return m, nil
}

func (l *ModelLoader) modelFileName() string {
	return fmt.Sprintf("ggml-%s.bin", l.config.ModelName)
}

func (l *ModelLoader) ensureModelFile(ctx context.Context) (string, error) {
	// ModelName may already be a path to a model file.
	if strings.HasSuffix(l.config.ModelName, ".bin") {
		if _, err := os.Stat(l.config.ModelName); err != nil {
			return "", errors.Wrap(err, "model file")
		}
		return l.config.ModelName, nil
	}

	path := filepath.Join(l.config.ModelDir, l.modelFileName())
	if fi, err := os.Stat(path); err == nil && fi.Size() > 0 {
		return path, nil
	}

	if err := os.MkdirAll(l.config.ModelDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create model directory")
	}

	url := strings.TrimRight(l.config.ModelBaseURL, "/") + "/" + l.modelFileName()
	logrus.WithFields(logrus.Fields{"url": url, "path": path}).Info("Downloading transcription model")
	if err := l.DownloadFunc(ctx, url, path); err != nil {
		return "", errors.Wrap(err, "download model")
	}
	return path, nil
}

func (l *ModelLoader) detectDevice(ctx context.Context) string {
	switch l.config.Device {
	case DeviceCUDA, DeviceCPU:
		return l.config.Device
	}
	out, err := l.exec.Execute(ctx, "nvidia-smi", "-L")
	if err == nil && strings.Contains(out, "GPU") {
		return DeviceCUDA
	}
	return DeviceCPU
}

func downloadFile(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".model-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
