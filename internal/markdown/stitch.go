package markdown

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Fragment pairs a chunk's absolute page mapping with the Markdown text
// transcribed for it. Begin markers inside Text carry relative page
// indices (1-based within the chunk).
type Fragment struct {
	Pages []int
	Text  string
}

var beginMarkerRe = regexp.MustCompile(`=-- Begin Page (\d+)(.*?) --=`)

// Stitch orders fragments by their first absolute page number, rewrites
// each begin marker's relative index to the absolute page number from
// the fragment's mapping, and joins the fragments with blank lines. End
// markers and continuation suffixes pass through unchanged.
func Stitch(fragments []Fragment) string {
	sorted := make([]Fragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return firstPage(sorted[i]) < firstPage(sorted[j])
	})

	var sb strings.Builder
	for _, frag := range sorted {
		sb.WriteString(renumber(frag))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// renumber rewrites relative begin-marker indices to absolute page
// numbers. Markers whose index falls outside the mapping are left
// untouched; boundary resolution strips them later.
func renumber(frag Fragment) string {
	return beginMarkerRe.ReplaceAllStringFunc(frag.Text, func(match string) string {
		groups := beginMarkerRe.FindStringSubmatch(match)
		rel, err := strconv.Atoi(groups[1])
		if err != nil || rel < 1 || rel > len(frag.Pages) {
			return match
		}
		return fmt.Sprintf("=-- Begin Page %d%s --=", frag.Pages[rel-1], groups[2])
	})
}

func firstPage(frag Fragment) int {
	if len(frag.Pages) == 0 {
		return 0
	}
	return frag.Pages[0]
}
