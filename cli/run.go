package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nijaru/yt-summary/pipeline"
	"github.com/nijaru/yt-summary/report"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	apperrors "github.com/nijaru/yt-summary/errors"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <url>",
		Short: "Summarize one video and write the Markdown report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cleanup, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			apiKey, _ := cmd.Flags().GetString("api-key")
			if apiKey == "" {
				apiKey = os.Getenv("LLM_API_KEY")
			}
			outDir, _ := cmd.Flags().GetString("out")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runOnce(ctx, cmd, newRunner(cfg), args[0], apiKey, outDir)
		},
	}
	cmd.Flags().String("api-key", "", "API key for an AI-enhanced summary (or LLM_API_KEY)")
	cmd.Flags().String("out", ".", "Directory to write the report into")
	return cmd
}

type runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

func runOnce(ctx context.Context, cmd *cobra.Command, r runner, url, apiKey, outDir string) error {
	stderr := cmd.ErrOrStderr()

	res, err := r.Run(ctx, pipeline.Request{
		URL:    url,
		APIKey: apiKey,
		Progress: func(p pipeline.Progress) {
			fmt.Fprintf(stderr, "[%3.0f%%] %s\n", p.Fraction*100, p.Message)
		},
	})
	if err != nil {
		var appErr *apperrors.AppError
		if apperrors.As(err, &appErr) {
			msg := "❌ " + appErr.Message
			if appErr.Hint != "" {
				msg += "\n💡 " + appErr.Hint
			}
			return errors.New(msg)
		}
		return err
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "⚠️ %s\n", w)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	path := filepath.Join(outDir, report.SafeFileName(res.Report.Title))
	if err := os.WriteFile(path, []byte(res.Report.Markdown), 0o644); err != nil {
		return errors.Wrap(err, "write report")
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
