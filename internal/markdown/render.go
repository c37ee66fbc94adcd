// Package markdown renders structured pages to Markdown, stitches
// Markdown page fragments into one document, and resolves page-boundary
// markers.
package markdown

import (
	"fmt"
	"strings"

	"github.com/pagemill/pagemill/internal/types"
)

// Render converts extracted pages to Markdown. Within a page, a run of
// blocks sharing the same label is coalesced into one rendered unit; the
// run is flushed when the label changes or a block ends its logical flow
// (continues=false). A horizontal rule closes every page.
func Render(pages []types.Page) string {
	var lines []string

	appendBlock := func(label, text string) {
		if text == "" {
			return
		}
		switch label {
		case types.LabelTitle:
			lines = append(lines, "# "+text)
		case types.LabelSectionHeading:
			lines = append(lines, "## "+text)
		case types.LabelSubHeading:
			lines = append(lines, "### "+text)
		case types.LabelCaption:
			lines = append(lines, "> "+text)
		case types.LabelIsolated, types.LabelIgnored:
			return
		case types.LabelHeader, types.LabelFooter, types.LabelPageNumber:
			lines = append(lines, "*"+text+"*")
		default: // body
			lines = append(lines, text)
		}
		lines = append(lines, "")
	}

	for _, page := range pages {
		lines = append(lines, fmt.Sprintf("## Page %d", page.PageNumber), "")

		var buffer strings.Builder
		bufferLabel := ""
		buffered := false

		for _, block := range page.Blocks {
			if strings.TrimSpace(block.Text) == "" {
				continue
			}

			label := block.Label
			if label == "" {
				label = types.LabelBody
			}

			// A label change flushes the buffered run before the new
			// block joins.
			if buffered && label != bufferLabel {
				appendBlock(bufferLabel, buffer.String())
				buffer.Reset()
			}

			bufferLabel = label
			buffered = true
			buffer.WriteString(block.Text)

			if !block.Continues {
				appendBlock(bufferLabel, buffer.String())
				buffer.Reset()
				buffered = false
			}
		}

		// Flush whatever the page left open.
		if buffered && buffer.Len() > 0 {
			appendBlock(bufferLabel, buffer.String())
		}

		lines = append(lines, "---", "")
	}

	return strings.Join(lines, "\n")
}
