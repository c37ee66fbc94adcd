// Package pipeline runs per-document OCR extraction end to end: chunk
// the source PDF, drive the batch engine, and merge accepted results
// into the output files next to the input.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/pagemill/pagemill/internal/engine"
	"github.com/pagemill/pagemill/internal/gemini"
	"github.com/pagemill/pagemill/internal/markdown"
	"github.com/pagemill/pagemill/internal/pdf"
	"github.com/pagemill/pagemill/internal/types"
)

// ExtractRequest contains the parameters for a structured extraction run.
type ExtractRequest struct {
	PDFPath   string
	BatchSize int // pages per chunk
	StartPage int // 1-based inclusive
	EndPage   int // 1-based inclusive; 0 means last page

	// Document overrides opening PDFPath (used by tests).
	Document pdf.Document

	Logger *slog.Logger
}

// ExtractResult reports a completed structured extraction run.
type ExtractResult struct {
	JSONPath     string
	MarkdownPath string
	PageCount    int     // pages in the output, prior runs included
	Dropped      [][]int // page groups lost after exhausting retries
}

// Extract OCRs a page range into per-page JSON records plus rendered
// Markdown. Pages already present in the JSON output from a prior run
// are skipped, so reruns are incremental and idempotent.
func Extract(ctx context.Context, backend gemini.BatchService, engCfg engine.Config, req ExtractRequest) (*ExtractResult, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}
	start := time.Now()

	jsonPath := stemPath(req.PDFPath) + ".json"
	mdPath := stemPath(req.PDFPath) + ".md"

	existing, existingPages, err := loadExistingPages(jsonPath)
	if err != nil {
		log.Warn("failed to load existing JSON, starting fresh", "path", jsonPath, "error", err)
		existing, existingPages = nil, map[int]bool{}
	}
	if len(existingPages) > 0 {
		log.Info("loaded existing JSON", "pages", len(existingPages))
	}

	doc := req.Document
	if doc == nil {
		if _, err := os.Stat(req.PDFPath); err != nil {
			return nil, fmt.Errorf("PDF not found: %s", req.PDFPath)
		}
		f, err := pdf.Open(req.PDFPath)
		if err != nil {
			return nil, err
		}
		doc = f
	}

	target, err := pdf.Resolve(req.StartPage, req.EndPage, doc.PageCount())
	if err != nil {
		return nil, err
	}

	var missing []int
	for _, p := range target {
		if !existingPages[p] {
			missing = append(missing, p)
		}
	}

	if len(missing) == 0 {
		log.Info("all pages in range already extracted, regenerating Markdown", "pages", len(target))
		sortPages(existing)
		if err := writeFileAtomic(mdPath, []byte(markdown.Render(existing))); err != nil {
			return nil, err
		}
		return &ExtractResult{JSONPath: jsonPath, MarkdownPath: mdPath, PageCount: len(existing)}, nil
	}

	log.Info("processing missing pages", "count", len(missing), "pages", missing)

	tasks, err := buildTasks(doc, missing, req.BatchSize)
	if err != nil {
		return nil, err
	}
	log.Info("prepared extraction chunks", "chunks", len(tasks))

	validator, err := engine.NewStructuredValidator()
	if err != nil {
		return nil, err
	}

	genCfg := &gemini.GenerationConfig{
		Temperature:      0.1,
		ResponseMIMEType: "application/json",
	}
	build := func(t engine.Task) gemini.GenerateRequest {
		prompt := structuredPrompt(len(t.Pages))
		log.Debug("built extraction request", "pages", t.Pages, "prompt", prompt)
		return gemini.NewPDFRequest(t.Payload, prompt, genCfg)
	}

	engCfg.Logger = log
	report, err := engine.New(backend, validator, build, engCfg).Run(ctx, tasks)
	if err != nil {
		return nil, err
	}

	newPages := collectPages(report.Results, log)
	all := append(existing, newPages...)
	if len(all) == 0 {
		return nil, fmt.Errorf("no data was extracted from the PDF")
	}
	sortPages(all)

	jsonData, err := encodePagesJSON(all)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(jsonPath, jsonData); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(mdPath, []byte(markdown.Render(all))); err != nil {
		return nil, err
	}

	log.Info("extraction complete",
		"json", jsonPath,
		"markdown", mdPath,
		"pages", len(all),
		"dropped_groups", len(report.Dropped),
		"elapsed", time.Since(start).Round(time.Second))
	for _, pages := range report.Dropped {
		log.Error("pages dropped after retries", "pages", pages)
	}

	return &ExtractResult{
		JSONPath:     jsonPath,
		MarkdownPath: mdPath,
		PageCount:    len(all),
		Dropped:      report.Dropped,
	}, nil
}

// buildTasks extracts each chunk's pages into a standalone PDF payload.
func buildTasks(doc pdf.Document, pages []int, batchSize int) ([]engine.Task, error) {
	var tasks []engine.Task
	for _, chunk := range pdf.Chunk(pages, batchSize) {
		payload, err := doc.ExtractPages(chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to extract pages %v: %w", chunk, err)
		}
		tasks = append(tasks, engine.Task{Pages: chunk, Payload: payload})
	}
	return tasks, nil
}

// collectPages decodes accepted responses and remaps their relative
// page numbers to absolute ones via each task's mapping.
func collectPages(results []engine.Result, log *slog.Logger) []types.Page {
	var out []types.Page
	for _, res := range results {
		pages, err := types.DecodePages([]byte(res.Text))
		if err != nil {
			// Validation already accepted this response; a decode error
			// here would be a bug, not a model failure.
			log.Error("failed to decode accepted response", "pages", res.Pages, "error", err)
			continue
		}
		for i := range pages {
			rel := pages[i].PageNumber
			if rel >= 1 && rel <= len(res.Pages) {
				pages[i].PageNumber = res.Pages[rel-1]
			}
		}
		out = append(out, pages...)
	}
	return out
}

func sortPages(pages []types.Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].PageNumber < pages[j].PageNumber
	})
}
