package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pagemill/pagemill/internal/types"
)

// stemPath strips the extension from a file path:
// "/docs/brief.pdf" -> "/docs/brief".
func stemPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// loadExistingPages reads a prior run's JSON output. Returns the pages
// and the set of absolute page numbers they cover. A missing file means
// a fresh start; a corrupt file is the caller's to report.
func loadExistingPages(path string) ([]types.Page, map[int]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, map[int]bool{}, nil
		}
		return nil, nil, err
	}

	var pages []types.Page
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, nil, fmt.Errorf("failed to parse existing JSON: %w", err)
	}

	seen := make(map[int]bool, len(pages))
	for _, p := range pages {
		if p.PageNumber > 0 {
			seen[p.PageNumber] = true
		}
	}
	return pages, seen, nil
}

// encodePagesJSON pretty-prints pages without HTML escaping, so
// Japanese text and punctuation stay readable in the output file.
func encodePagesJSON(pages []types.Page) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pages); err != nil {
		return nil, fmt.Errorf("failed to encode pages: %w", err)
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes via a temp file in the target directory plus
// rename, so a crash mid-write never clobbers a prior run's output.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
