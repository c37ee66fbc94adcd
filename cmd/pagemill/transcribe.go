package main

import (
	"github.com/spf13/cobra"

	"github.com/pagemill/pagemill/internal/gemini"
	"github.com/pagemill/pagemill/internal/pipeline"
)

var (
	transcribeBatchSize int
	transcribeStartPage int
	transcribeEndPage   int
	transcribeStyle     string
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <pdf-or-directory>",
	Short: "Transcribe a scanned PDF to marker-delimited Markdown",
	Long: `Transcribe a scanned PDF to Markdown with page boundary markers.

Output lands next to the input: brief.pdf produces brief.md. The file
keeps begin/end markers on every page; run "pagemill clean" afterwards
to resolve the markers into a continuous document.

The ".pdf" extension may be omitted. Given a directory, every *.pdf
inside is processed in name order.

Examples:
  pagemill transcribe brief.pdf
  pagemill transcribe brief --style court
  pagemill transcribe ./filings/ --batch-size 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := cfgManager.Get()
		client := gemini.NewClient(cfg.ClientConfig())

		run := func(path string) error {
			_, err := pipeline.Transcribe(cmd.Context(), client, cfg.EngineConfig(), pipeline.TranscribeRequest{
				PDFPath:   path,
				BatchSize: batchSizeOrDefault(transcribeBatchSize, cfg.Batch.PageBatchSize),
				StartPage: transcribeStartPage,
				EndPage:   transcribeEndPage,
				Style:     transcribeStyle,
				Logger:    logger,
			})
			return err
		}

		// A bare name like "brief" is resolved by the pipeline, so only
		// route through the directory walker when the path exists as-is.
		if isDir(args[0]) {
			return forEachPDF(args[0], run)
		}
		return run(args[0])
	},
}

func init() {
	transcribeCmd.Flags().IntVar(&transcribeBatchSize, "batch-size", 0, "pages per chunk (default from config)")
	transcribeCmd.Flags().IntVar(&transcribeStartPage, "start-page", 1, "first page to process (1-based)")
	transcribeCmd.Flags().IntVar(&transcribeEndPage, "end-page", 0, "last page to process (0 = last page)")
	transcribeCmd.Flags().StringVar(&transcribeStyle, "style", "general", "transcription style: general or court")

	rootCmd.AddCommand(transcribeCmd)
}
