package engine

import (
	"testing"
)

func newStructured(t *testing.T) *StructuredValidator {
	t.Helper()
	v, err := NewStructuredValidator()
	if err != nil {
		t.Fatalf("NewStructuredValidator: %v", err)
	}
	return v
}

func TestStructuredValidatorAccepts(t *testing.T) {
	v := newStructured(t)

	response := `[
	  {"page_number": 1, "blocks": [
	    {"text": "title text", "label": "title", "font_size": 40,
	     "continues": false, "direction": "horizontal",
	     "box": {"x": 100, "y": 50, "width": 800, "height": 60}}
	  ]},
	  {"page_number": 2, "blocks": []}
	]`

	if err := v.Validate([]int{10, 11}, response); err != nil {
		t.Errorf("valid response rejected: %v", err)
	}
}

func TestStructuredValidatorAcceptsAnyPageOrder(t *testing.T) {
	v := newStructured(t)

	response := `[
	  {"page_number": 3, "blocks": []},
	  {"page_number": 1, "blocks": []},
	  {"page_number": 2, "blocks": []}
	]`

	if err := v.Validate([]int{5, 6, 7}, response); err != nil {
		t.Errorf("permuted page numbers rejected: %v", err)
	}
}

func TestStructuredValidatorAcceptsCodeFence(t *testing.T) {
	v := newStructured(t)

	response := "```json\n[{\"page_number\": 1, \"blocks\": []}]\n```"
	if err := v.Validate([]int{4}, response); err != nil {
		t.Errorf("fenced response rejected: %v", err)
	}
}

func TestStructuredValidatorCoercesSingleObject(t *testing.T) {
	v := newStructured(t)

	response := `{"page_number": 1, "blocks": []}`
	if err := v.Validate([]int{9}, response); err != nil {
		t.Errorf("single page object rejected: %v", err)
	}
}

func TestStructuredValidatorRejects(t *testing.T) {
	v := newStructured(t)

	tests := []struct {
		name     string
		pages    []int
		response string
	}{
		{name: "empty", pages: []int{1}, response: "   "},
		{name: "not JSON", pages: []int{1}, response: "Sure, here are the pages:"},
		{name: "wrong page count", pages: []int{1, 2}, response: `[{"page_number": 1, "blocks": []}]`},
		{
			name:     "duplicate page numbers",
			pages:    []int{1, 2},
			response: `[{"page_number": 1, "blocks": []}, {"page_number": 1, "blocks": []}]`,
		},
		{
			name:     "gap in page numbers",
			pages:    []int{1, 2},
			response: `[{"page_number": 1, "blocks": []}, {"page_number": 3, "blocks": []}]`,
		},
		{
			name:     "bad label enum",
			pages:    []int{1},
			response: `[{"page_number": 1, "blocks": [{"text": "x", "label": "banner"}]}]`,
		},
		{
			name:     "box out of range",
			pages:    []int{1},
			response: `[{"page_number": 1, "blocks": [{"text": "x", "box": {"x": 2000, "y": 0, "width": 10, "height": 10}}]}]`,
		},
		{name: "object without blocks", pages: []int{1}, response: `{"message": "done"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.Validate(tt.pages, tt.response); err == nil {
				t.Error("expected rejection")
			}
		})
	}
}

func TestMarkerValidator(t *testing.T) {
	v := MarkerValidator{}

	good := "=-- Begin Page 1  --=\ntext one\n=-- End Printed Page 12  --=\n" +
		"=-- Begin Page 2 (Continuation) --=\ntext two\n=-- End Printed Page 13 (Continuation) --=\n"
	if err := v.Validate([]int{12, 13}, good); err != nil {
		t.Errorf("valid response rejected: %v", err)
	}

	tests := []struct {
		name     string
		pages    []int
		response string
	}{
		{name: "empty", pages: []int{1}, response: "\n\t "},
		{
			name:     "missing end marker",
			pages:    []int{1},
			response: "=-- Begin Page 1  --=\ntext\n",
		},
		{
			name:     "missing begin marker",
			pages:    []int{1},
			response: "text\n=-- End Printed Page 1  --=\n",
		},
		{
			name:     "too few pages",
			pages:    []int{1, 2},
			response: "=-- Begin Page 1  --=\ntext\n=-- End Printed Page 1  --=\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.Validate(tt.pages, tt.response); err == nil {
				t.Error("expected rejection")
			}
		})
	}
}
