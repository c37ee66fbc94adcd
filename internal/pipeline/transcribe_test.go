package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pagemill/pagemill/internal/gemini"
)

// markerResponder answers each request with marker-delimited Markdown,
// one page section per requested page, using relative begin indices.
func markerResponder(t *testing.T) func(gemini.GenerateRequest) (string, error) {
	return func(req gemini.GenerateRequest) (string, error) {
		pages := requestedPages(t, req)
		var sb strings.Builder
		for i, abs := range pages {
			fmt.Fprintf(&sb, "=-- Begin Page %d  --=\n", i+1)
			fmt.Fprintf(&sb, "transcript of page %d\n", abs)
			fmt.Fprintf(&sb, "=-- End Printed Page %d  --=\n", abs)
		}
		return sb.String(), nil
	}
}

func TestTranscribe(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "doc.pdf")

	mock := gemini.NewMockBatchService()
	mock.RespondFn = markerResponder(t)

	res, err := Transcribe(context.Background(), mock, fastEngineConfig(), TranscribeRequest{
		PDFPath:   pdfPath,
		BatchSize: 2,
		StartPage: 1,
		Document:  fakeDoc{pages: 5},
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.PageCount != 5 {
		t.Errorf("expected 5 pages, got %d", res.PageCount)
	}

	md, err := os.ReadFile(res.MarkdownPath)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	out := string(md)

	// Begin markers carry absolute page numbers after stitching.
	for p := 1; p <= 5; p++ {
		if !strings.Contains(out, fmt.Sprintf("=-- Begin Page %d  --=", p)) {
			t.Errorf("missing begin marker for page %d:\n%s", p, out)
		}
		if !strings.Contains(out, fmt.Sprintf("transcript of page %d", p)) {
			t.Errorf("missing transcript for page %d", p)
		}
	}

	// Pages appear in document order even though chunks run concurrently.
	if strings.Index(out, "transcript of page 3") > strings.Index(out, "transcript of page 5") {
		t.Errorf("pages out of order:\n%s", out)
	}
}

func TestTranscribeUnknownStyle(t *testing.T) {
	mock := gemini.NewMockBatchService()
	_, err := Transcribe(context.Background(), mock, fastEngineConfig(), TranscribeRequest{
		PDFPath:  "doc.pdf",
		Style:    "academic",
		Document: fakeDoc{pages: 1},
	})
	if err == nil || !strings.Contains(err.Error(), "unknown style") {
		t.Fatalf("expected unknown style error, got %v", err)
	}
}

func TestTranscribeMissingPDF(t *testing.T) {
	mock := gemini.NewMockBatchService()
	_, err := Transcribe(context.Background(), mock, fastEngineConfig(), TranscribeRequest{
		PDFPath: filepath.Join(t.TempDir(), "nope"),
	})
	if err == nil {
		t.Fatal("expected error for missing PDF")
	}
}

func TestResolvePDFPathAddsExtension(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "brief.pdf")
	if err := os.WriteFile(full, []byte("%PDF-"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := resolvePDFPath(filepath.Join(dir, "brief"))
	if err != nil {
		t.Fatalf("resolvePDFPath: %v", err)
	}
	if got != full {
		t.Errorf("got %q, want %q", got, full)
	}
}

func TestStyleFor(t *testing.T) {
	if s, err := styleFor(""); err != nil || s != StyleGeneral {
		t.Errorf("empty style should default to general")
	}
	if s, err := styleFor("court"); err != nil || s != StyleCourt {
		t.Errorf("court style not resolved")
	}
	if _, err := styleFor("haiku"); err == nil {
		t.Errorf("expected error for unknown style")
	}
}
