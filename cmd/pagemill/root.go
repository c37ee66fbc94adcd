package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagemill/pagemill/internal/config"
	"github.com/pagemill/pagemill/version"
)

var (
	cfgFile  string
	logLevel string

	cfgManager *config.Manager
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pagemill",
	Short: "Batch OCR for scanned PDFs using the Gemini Batch API",
	Long: `Pagemill converts scanned PDFs into structured JSON and clean Markdown
using the Gemini Batch API.

Workflows:
  - extract:    per-page JSON layout records plus rendered Markdown
  - transcribe: marker-delimited Markdown transcription
  - clean:      resolve page-boundary markers into continuous Markdown

Large documents are split into page chunks, submitted as batch jobs,
validated, and retried per chunk until the whole range is covered.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.pagemill/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn, error",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, err := parseLogLevel(logLevel)
		if err != nil {
			return err
		}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))
		slog.SetDefault(logger)

		cfgManager, err = config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
