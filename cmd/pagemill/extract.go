package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagemill/pagemill/internal/gemini"
	"github.com/pagemill/pagemill/internal/pipeline"
)

var (
	extractBatchSize int
	extractStartPage int
	extractEndPage   int
)

var extractCmd = &cobra.Command{
	Use:   "extract <pdf-or-directory>",
	Short: "Extract structured JSON layout data from a scanned PDF",
	Long: `Extract per-page JSON layout records from a scanned PDF and render
them to Markdown.

Output lands next to the input: brief.pdf produces brief.json and
brief.md. Reruns are incremental: pages already present in the JSON
file are skipped, so an interrupted run picks up where it left off.

Given a directory, every *.pdf inside is processed in name order.

Examples:
  pagemill extract brief.pdf
  pagemill extract brief.pdf --start-page 10 --end-page 25
  pagemill extract ./evidence/ --batch-size 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := cfgManager.Get()
		client := gemini.NewClient(cfg.ClientConfig())

		return forEachPDF(args[0], func(path string) error {
			_, err := pipeline.Extract(cmd.Context(), client, cfg.EngineConfig(), pipeline.ExtractRequest{
				PDFPath:   path,
				BatchSize: batchSizeOrDefault(extractBatchSize, cfg.Batch.PageBatchSize),
				StartPage: extractStartPage,
				EndPage:   extractEndPage,
				Logger:    logger,
			})
			return err
		})
	},
}

func init() {
	extractCmd.Flags().IntVar(&extractBatchSize, "batch-size", 0, "pages per chunk (default from config)")
	extractCmd.Flags().IntVar(&extractStartPage, "start-page", 1, "first page to process (1-based)")
	extractCmd.Flags().IntVar(&extractEndPage, "end-page", 0, "last page to process (0 = last page)")

	rootCmd.AddCommand(extractCmd)
}

func batchSizeOrDefault(flag, cfg int) int {
	if flag > 0 {
		return flag
	}
	return cfg
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// forEachPDF runs fn on a single PDF, or on every *.pdf in a directory
// in name order. Directory runs continue past per-file failures and
// report them together at the end.
func forEachPDF(path string, fn func(string) error) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}

	if !info.IsDir() {
		return fn(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	var pdfs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(path, e.Name()))
		}
	}
	if len(pdfs) == 0 {
		return fmt.Errorf("no PDF files found in %s", path)
	}
	sort.Strings(pdfs)

	var failed []string
	for _, p := range pdfs {
		logger.Info("processing file", "path", p)
		if err := fn(p); err != nil {
			logger.Error("file failed", "path", p, "error", err)
			failed = append(failed, p)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed: %s", len(failed), len(pdfs), strings.Join(failed, ", "))
	}
	return nil
}
