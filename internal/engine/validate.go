package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pagemill/pagemill/internal/types"
)

// Validator decides whether one task's raw response is acceptable.
// A non-nil error is a rejection with a diagnostic reason; rejections
// resolve to retry decisions and never abort sibling tasks.
type Validator interface {
	Validate(pages []int, response string) error
}

// pageArraySchema constrains field types and label/direction enums while
// leaving every block field optional; the model sometimes omits fields
// and the renderer tolerates that.
const pageArraySchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["page_number"],
    "properties": {
      "page_number": {"type": "integer", "minimum": 1},
      "blocks": {
        "type": "array",
        "items": {
          "type": "object",
          "properties": {
            "text": {"type": "string"},
            "label": {
              "enum": ["title", "sectionHeading", "subHeading", "body",
                       "caption", "header", "footer", "pageNumber",
                       "isolated", "ignored"]
            },
            "font_size": {"type": "integer", "minimum": 0, "maximum": 1000},
            "continues": {"type": "boolean"},
            "direction": {"enum": ["horizontal", "vertical"]},
            "box": {
              "type": "object",
              "properties": {
                "x": {"type": "integer", "minimum": 0, "maximum": 1000},
                "y": {"type": "integer", "minimum": 0, "maximum": 1000},
                "width": {"type": "integer", "minimum": 0, "maximum": 1000},
                "height": {"type": "integer", "minimum": 0, "maximum": 1000}
              }
            }
          }
        }
      }
    }
  }
}`

// StructuredValidator accepts a response only if it parses as a page
// list matching the schema, with exactly one page object per expected
// page and page numbers forming the exact relative set {1..N}.
type StructuredValidator struct {
	schema *jsonschema.Schema
}

// NewStructuredValidator compiles the page-array schema.
func NewStructuredValidator() (*StructuredValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("pages.json", bytes.NewReader([]byte(pageArraySchema))); err != nil {
		return nil, fmt.Errorf("failed to load page schema: %w", err)
	}
	schema, err := compiler.Compile("pages.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile page schema: %w", err)
	}
	return &StructuredValidator{schema: schema}, nil
}

// Validate implements Validator.
func (v *StructuredValidator) Validate(pages []int, response string) error {
	raw := types.Normalize([]byte(response))
	if raw == "" {
		return fmt.Errorf("empty response")
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}

	// Coerce a single page object to a one-element list before schema
	// validation, mirroring DecodePages.
	if obj, ok := doc.(map[string]any); ok {
		if _, hasBlocks := obj["blocks"]; !hasBlocks {
			return fmt.Errorf("response is not a list or a valid page object")
		}
		doc = []any{obj}
	}

	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("response does not match page schema: %w", err)
	}

	decoded, err := types.DecodePages([]byte(response))
	if err != nil {
		return err
	}

	expected := len(pages)
	if len(decoded) != expected {
		return fmt.Errorf("page count mismatch: expected %d, got %d", expected, len(decoded))
	}

	nums := make([]int, len(decoded))
	for i, p := range decoded {
		nums[i] = p.PageNumber
	}
	sort.Ints(nums)
	for i, n := range nums {
		if n != i+1 {
			return fmt.Errorf("invalid page numbers: expected 1..%d, got %v", expected, nums)
		}
	}
	return nil
}

// Page boundary markers emitted by the Markdown transcription prompt.
const (
	BeginMarkerPrefix = "=-- Begin Page"
	EndMarkerPrefix   = "=-- End Printed Page"
)

// MarkerValidator accepts a Markdown response if it contains exactly one
// begin marker and one end marker per expected page. No deeper
// structural check: malformed individual markers are tolerated and fixed
// downstream by renumbering and boundary resolution.
type MarkerValidator struct{}

// Validate implements Validator.
func (MarkerValidator) Validate(pages []int, response string) error {
	if strings.TrimSpace(response) == "" {
		return fmt.Errorf("empty response")
	}

	expected := len(pages)
	begins := strings.Count(response, BeginMarkerPrefix)
	ends := strings.Count(response, EndMarkerPrefix)
	if begins != expected || ends != expected {
		return fmt.Errorf("page marker count mismatch: expected %d, got %d begin / %d end", expected, begins, ends)
	}
	return nil
}

// Verify interfaces
var (
	_ Validator = (*StructuredValidator)(nil)
	_ Validator = MarkerValidator{}
)
