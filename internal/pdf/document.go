// Package pdf handles source document access and page chunking.
package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Document is a read-only view of a source PDF. The pipeline depends on
// this interface so tests can substitute a fake document.
type Document interface {
	// PageCount returns the total number of pages.
	PageCount() int

	// ExtractPages builds a standalone PDF containing exactly the given
	// 1-based pages, in the given order.
	ExtractPages(pages []int) ([]byte, error)
}

// File is a pdfcpu-backed Document loaded fully into memory.
type File struct {
	path      string
	data      []byte
	pageCount int
}

// Open reads a PDF from disk and determines its page count.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	return &File{path: path, data: data, pageCount: count}, nil
}

// Path returns the source file path.
func (f *File) Path() string {
	return f.path
}

// PageCount returns the total number of pages.
func (f *File) PageCount() int {
	return f.pageCount
}

// ExtractPages builds a standalone PDF containing the given pages.
func (f *File) ExtractPages(pages []int) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages selected")
	}

	selection := make([]string, len(pages))
	for i, p := range pages {
		if p < 1 || p > f.pageCount {
			return nil, fmt.Errorf("page %d out of range 1-%d", p, f.pageCount)
		}
		selection[i] = strconv.Itoa(p)
	}

	var buf bytes.Buffer
	if err := api.Trim(bytes.NewReader(f.data), &buf, selection, nil); err != nil {
		return nil, fmt.Errorf("failed to extract pages %v: %w", pages, err)
	}
	return buf.Bytes(), nil
}

// Verify interface
var _ Document = (*File)(nil)
