package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStemPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/docs/brief.pdf", "/docs/brief"},
		{"brief.PDF", "brief"},
		{"noext", "noext"},
		{"dir.v2/file.pdf", "dir.v2/file"},
	}
	for _, tt := range tests {
		if got := stemPath(tt.in); got != tt.want {
			t.Errorf("stemPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadExistingPagesMissingFile(t *testing.T) {
	pages, seen, err := loadExistingPages(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(pages) != 0 || len(seen) != 0 {
		t.Errorf("expected empty state, got %v %v", pages, seen)
	}
}

func TestLoadExistingPagesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := loadExistingPages(path); err == nil {
		t.Fatal("expected error for corrupt JSON")
	}
}

func TestWriteFileAtomicReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := writeFileAtomic(path, []byte("new contents")); err != nil {
		t.Fatalf("writeFileAtomic: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new contents" {
		t.Errorf("got %q", data)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}
