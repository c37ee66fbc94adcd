// Package types holds the page/block data model shared across the
// extraction pipeline.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Block labels assigned by the extraction model.
const (
	LabelTitle          = "title"
	LabelSectionHeading = "sectionHeading"
	LabelSubHeading     = "subHeading"
	LabelBody           = "body"
	LabelCaption        = "caption"
	LabelHeader         = "header"
	LabelFooter         = "footer"
	LabelPageNumber     = "pageNumber"
	LabelIsolated       = "isolated"
	LabelIgnored        = "ignored"
)

// Box is an axis-aligned bounding box in normalized page coordinates
// (top-left origin, 1000x1000 page).
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Block is one extracted text region.
type Block struct {
	Text      string `json:"text"`
	Label     string `json:"label"`
	FontSize  int    `json:"font_size"`
	Continues bool   `json:"continues"`
	Direction string `json:"direction"`
	Box       Box    `json:"box"`
}

// Page holds the blocks extracted from a single page. PageNumber is
// relative (1-based within a chunk) as returned by the model, and
// absolute once the pipeline has remapped it.
type Page struct {
	PageNumber int     `json:"page_number"`
	Blocks     []Block `json:"blocks"`
}

// DecodePages parses a model response into a page list. A single page
// object is coerced to a one-element list. Markdown code fences around
// the JSON are stripped first; models occasionally add them despite
// instructions.
func DecodePages(data []byte) ([]Page, error) {
	trimmed := Normalize(data)
	if trimmed == "" {
		return nil, fmt.Errorf("empty response")
	}

	var pages []Page
	if err := json.Unmarshal([]byte(trimmed), &pages); err == nil {
		return pages, nil
	}

	// Coerce a bare page object to a one-element list. Only objects that
	// actually carry a blocks field qualify.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
		return nil, fmt.Errorf("response is not a page list or page object: %w", err)
	}
	if _, ok := probe["blocks"]; !ok {
		return nil, fmt.Errorf("response object is missing blocks")
	}
	var single Page
	if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
		return nil, fmt.Errorf("invalid page object: %w", err)
	}
	return []Page{single}, nil
}

// Normalize trims a raw response and strips a surrounding Markdown code
// fence if present, returning the candidate JSON text.
func Normalize(data []byte) string {
	return stripCodeFence(strings.TrimSpace(string(data)))
}

// stripCodeFence removes a surrounding ```...``` fence if present.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
