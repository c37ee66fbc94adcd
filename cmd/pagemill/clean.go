package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagemill/pagemill/internal/markdown"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <markdown-or-directory>",
	Short: "Resolve page boundary markers in transcribed Markdown",
	Long: `Resolve the page boundary markers in transcribed Markdown into a
continuous document. Paragraphs split across page breaks are rejoined;
plain page breaks become a single blank line.

Naming: brief_paged.md cleans to brief.md; any other name gets a
_clean suffix (brief.md cleans to brief_clean.md), so the marked-up
source is never overwritten.

Given a directory, *_paged.md files are cleaned; if there are none,
every *.md is cleaned instead (skipping prior *_clean.md output).

Examples:
  pagemill clean brief_paged.md
  pagemill clean ./filings/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if isDir(path) {
			return cleanDir(path)
		}
		return cleanFile(path)
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func cleanFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	out := cleanOutputPath(path)
	if err := os.WriteFile(out, []byte(markdown.Resolve(string(data))), 0o644); err != nil {
		return err
	}
	logger.Info("cleaned", "input", path, "output", out)
	return nil
}

func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var paged, plain []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		switch {
		case strings.HasSuffix(name, "_paged.md"):
			paged = append(paged, filepath.Join(dir, name))
		case strings.HasSuffix(name, "_clean.md"):
			// prior output
		default:
			plain = append(plain, filepath.Join(dir, name))
		}
	}

	targets := paged
	if len(targets) == 0 {
		targets = plain
	}
	if len(targets) == 0 {
		return fmt.Errorf("no Markdown files found in %s", dir)
	}
	sort.Strings(targets)

	var failed []string
	for _, p := range targets {
		if err := cleanFile(p); err != nil {
			logger.Error("file failed", "path", p, "error", err)
			failed = append(failed, p)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed: %s", len(failed), len(targets), strings.Join(failed, ", "))
	}
	return nil
}

// cleanOutputPath maps X_paged.md to X.md and anything else to
// X_clean.md.
func cleanOutputPath(path string) string {
	if strings.HasSuffix(path, "_paged.md") {
		return strings.TrimSuffix(path, "_paged.md") + ".md"
	}
	return strings.TrimSuffix(path, ".md") + "_clean.md"
}
