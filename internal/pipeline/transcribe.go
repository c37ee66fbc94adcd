package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pagemill/pagemill/internal/engine"
	"github.com/pagemill/pagemill/internal/gemini"
	"github.com/pagemill/pagemill/internal/markdown"
	"github.com/pagemill/pagemill/internal/pdf"
)

// TranscribeRequest contains the parameters for a Markdown
// transcription run.
type TranscribeRequest struct {
	PDFPath   string
	BatchSize int
	StartPage int
	EndPage   int    // 0 means last page
	Style     string // "general" or "court"

	// Document overrides opening PDFPath (used by tests).
	Document pdf.Document

	Logger *slog.Logger
}

// TranscribeResult reports a completed transcription run.
type TranscribeResult struct {
	MarkdownPath string
	PageCount    int
	Dropped      [][]int
}

// Transcribe OCRs a page range into marker-delimited Markdown. Unlike
// Extract it always regenerates the full range; the output is a single
// stitched document, not a per-page store.
func Transcribe(ctx context.Context, backend gemini.BatchService, engCfg engine.Config, req TranscribeRequest) (*TranscribeResult, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}
	start := time.Now()

	path := req.PDFPath
	doc := req.Document
	if doc == nil {
		var err error
		path, err = resolvePDFPath(path)
		if err != nil {
			return nil, err
		}
		f, err := pdf.Open(path)
		if err != nil {
			return nil, err
		}
		doc = f
	}
	mdPath := stemPath(path) + ".md"

	target, err := pdf.Resolve(req.StartPage, req.EndPage, doc.PageCount())
	if err != nil {
		return nil, err
	}

	tasks, err := buildTasks(doc, target, req.BatchSize)
	if err != nil {
		return nil, err
	}
	log.Info("prepared transcription chunks", "pages", len(target), "chunks", len(tasks))

	styleContext, err := styleFor(req.Style)
	if err != nil {
		return nil, err
	}

	genCfg := &gemini.GenerationConfig{
		Temperature:      0.1,
		ResponseMIMEType: "text/plain",
	}
	build := func(t engine.Task) gemini.GenerateRequest {
		prompt := markdownPrompt(len(t.Pages), styleContext)
		log.Debug("built transcription request", "pages", t.Pages, "prompt", prompt)
		return gemini.NewPDFRequest(t.Payload, prompt, genCfg)
	}

	engCfg.Logger = log
	report, err := engine.New(backend, engine.MarkerValidator{}, build, engCfg).Run(ctx, tasks)
	if err != nil {
		return nil, err
	}
	if len(report.Results) == 0 {
		return nil, fmt.Errorf("no pages were transcribed from the PDF")
	}

	fragments := make([]markdown.Fragment, 0, len(report.Results))
	pages := 0
	for _, res := range report.Results {
		fragments = append(fragments, markdown.Fragment{Pages: res.Pages, Text: res.Text})
		pages += len(res.Pages)
	}

	if err := writeFileAtomic(mdPath, []byte(markdown.Stitch(fragments))); err != nil {
		return nil, err
	}

	log.Info("transcription complete",
		"markdown", mdPath,
		"pages", pages,
		"dropped_groups", len(report.Dropped),
		"elapsed", time.Since(start).Round(time.Second))
	for _, dropped := range report.Dropped {
		log.Error("pages dropped after retries", "pages", dropped)
	}

	return &TranscribeResult{MarkdownPath: mdPath, PageCount: pages, Dropped: report.Dropped}, nil
}

// resolvePDFPath tries the path as given, then with a .pdf extension
// appended, so "transcribe brief" finds brief.pdf.
func resolvePDFPath(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		withExt := path + ".pdf"
		if _, err := os.Stat(withExt); err == nil {
			return withExt, nil
		}
	}
	return "", fmt.Errorf("PDF not found: %s", path)
}

func styleFor(style string) (string, error) {
	switch style {
	case "", "general":
		return StyleGeneral, nil
	case "court":
		return StyleCourt, nil
	default:
		return "", fmt.Errorf("unknown style %q (expected general or court)", style)
	}
}
