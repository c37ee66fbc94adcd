package markdown

import (
	"regexp"
	"strings"
)

// Boundary resolution removes the page markers left in stitched
// Markdown. It runs in two phases: tokenize the document into text runs
// and markers, then fold each end/begin marker pair according to the
// continuation rule. Keeping the fold separate from the marker regexp
// makes the merge rule testable on plain token sequences.

const continuationFlag = "(Continuation)"

var (
	markerRe   = regexp.MustCompile(`=-- (?:Begin Page|End Printed Page)[^\n]*? --=`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

type segKind int

const (
	segText segKind = iota
	segBegin
	segEnd
)

// segment is one token of the document: a text run or a page marker.
type segment struct {
	kind segKind
	text string // raw text for segText, full marker for markers
	cont bool   // marker carries the continuation flag
}

// Resolve removes page-boundary markers from md. An end marker followed
// (across only whitespace) by a begin marker is a chunk boundary: if
// either side is flagged as a continuation the surrounding paragraph is
// rejoined without a break, otherwise the pair becomes a single blank
// line. Unpaired markers (document start/end) are stripped. Runs of
// three or more newlines collapse to one blank line.
func Resolve(md string) string {
	folded := fold(tokenize(md))
	return newlineRun.ReplaceAllString(folded, "\n\n")
}

// tokenize splits the document into alternating text runs and markers.
// Text runs may be empty-free: adjacent markers produce no text segment
// between them.
func tokenize(md string) []segment {
	var segs []segment
	last := 0
	for _, loc := range markerRe.FindAllStringIndex(md, -1) {
		if loc[0] > last {
			segs = append(segs, segment{kind: segText, text: md[last:loc[0]]})
		}
		raw := md[loc[0]:loc[1]]
		kind := segBegin
		if strings.HasPrefix(raw, "=-- End Printed Page") {
			kind = segEnd
		}
		segs = append(segs, segment{
			kind: kind,
			text: raw,
			cont: strings.Contains(raw, continuationFlag),
		})
		last = loc[1]
	}
	if last < len(md) {
		segs = append(segs, segment{kind: segText, text: md[last:]})
	}
	return segs
}

// fold walks the token sequence and emits the resolved document.
func fold(segs []segment) string {
	var out []string

	// rtrimLast removes trailing whitespace from the emitted text so a
	// folded boundary controls its own spacing.
	rtrimLast := func() {
		for len(out) > 0 {
			trimmed := strings.TrimRight(out[len(out)-1], " \t\r\n")
			if trimmed != "" {
				out[len(out)-1] = trimmed
				return
			}
			out = out[:len(out)-1]
		}
	}

	// ltrimNext removes leading whitespace from the upcoming text run.
	ltrimNext := func(i int) {
		if i < len(segs) && segs[i].kind == segText {
			segs[i].text = strings.TrimLeft(segs[i].text, " \t\r\n")
		}
	}

	i := 0
	for i < len(segs) {
		s := segs[i]
		switch s.kind {
		case segText:
			out = append(out, s.text)
			i++

		case segEnd:
			// Pair with a begin marker across optional whitespace.
			j := i + 1
			if j < len(segs) && segs[j].kind == segText && strings.TrimSpace(segs[j].text) == "" {
				j++
			}
			if j < len(segs) && segs[j].kind == segBegin {
				begin := segs[j]
				rtrimLast()
				if len(out) > 0 {
					if s.cont || begin.cont {
						// Split purely by the chunk boundary: rejoin the
						// paragraph without a break.
						out = append(out, "\n")
					} else {
						out = append(out, "\n\n")
					}
				}
				ltrimNext(j + 1)
				i = j + 1
				continue
			}
			// Orphan end marker (document end): strip it and the
			// whitespace around it.
			rtrimLast()
			i = j

		case segBegin:
			// Orphan begin marker (document start): strip it and the
			// whitespace after it.
			ltrimNext(i + 1)
			i++
		}
	}

	return strings.Join(out, "")
}
