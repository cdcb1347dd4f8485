package executor

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Executor runs external command-line tools and returns their stdout.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
}

type commandExecutor struct {
	logger *logrus.Logger
}

func New() Executor {
	return &commandExecutor{logger: logrus.StandardLogger()}
}

func (e *commandExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	logger := e.logger.WithFields(logrus.Fields{
		"command":  name,
		"args":     len(args),
		"duration": time.Since(start).String(),
	})

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.WithError(ctxErr).Warn("Command interrupted")
			return "", errors.Wrapf(ctxErr, "command %q interrupted", name)
		}
		stderrStr := strings.TrimSpace(stderr.String())
		logger.WithError(err).WithField("stderr", stderrStr).Error("Command failed")
		if stderrStr != "" {
			return "", errors.Wrapf(err, "command %q failed: %s", name, stderrStr)
		}
		return "", errors.Wrapf(err, "command %q failed", name)
	}

	logger.Debug("Command finished")
	return stdout.String(), nil
}

// LookPath reports whether name resolves to an executable.
func LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrapf(err, "%s not found", name)
	}
	return path, nil
}
