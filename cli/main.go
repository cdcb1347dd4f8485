package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/logger"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // load .env if present

	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "yt-summary",
		Short:         "Summarize online videos into a Markdown report",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "YAML config file (overrides CONFIG_FILE)")

	root.AddCommand(newServeCommand(), newRunCommand())
	return root
}

// loadConfig resolves the configuration and sets up logging for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, func(), error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	closer, err := logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Dir:    cfg.Log.Dir,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, func() { closer.Close() }, nil
}
