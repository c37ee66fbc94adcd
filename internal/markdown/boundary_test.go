package markdown

import "testing"

func TestResolveContinuationRejoinsParagraph(t *testing.T) {
	in := "end of para.\n" +
		"=-- End Printed Page 12 (Continuation) --=\n" +
		"=-- Begin Page 13 (Continuation) --=\n" +
		"continued text"

	got := Resolve(in)
	want := "end of para.\ncontinued text"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveContinuationOnOneSideOnly(t *testing.T) {
	// Either side carrying the flag is enough to rejoin.
	in := "end of para.\n" +
		"=-- End Printed Page 12 (Continuation) --=\n" +
		"=-- Begin Page 13  --=\n" +
		"continued text"

	got := Resolve(in)
	want := "end of para.\ncontinued text"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolvePlainBoundaryBecomesBlankLine(t *testing.T) {
	in := "last paragraph.\n" +
		"=-- End Printed Page 12  --=\n" +
		"=-- Begin Page 13  --=\n" +
		"new paragraph."

	got := Resolve(in)
	want := "last paragraph.\n\nnew paragraph."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveStripsDocumentEdgeMarkers(t *testing.T) {
	in := "=-- Begin Page 1  --=\n" +
		"first paragraph.\n" +
		"=-- End Printed Page 1  --=\n"

	got := Resolve(in)
	want := "first paragraph."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveMultipleBoundaries(t *testing.T) {
	in := "=-- Begin Page 1  --=\n" +
		"alpha ends here\n" +
		"=-- End Printed Page 1 (Continuation) --=\n\n" +
		"=-- Begin Page 2 (Continuation) --=\n" +
		"and resumes.\n" +
		"=-- End Printed Page 2  --=\n" +
		"=-- Begin Page 3  --=\n" +
		"beta paragraph.\n" +
		"=-- End Printed Page 3  --=\n"

	got := Resolve(in)
	want := "alpha ends here\nand resumes.\n\nbeta paragraph."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveCollapsesNewlineRuns(t *testing.T) {
	got := Resolve("one\n\n\n\ntwo")
	want := "one\n\ntwo"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveNoMarkersPassThrough(t *testing.T) {
	in := "plain document\n\nwith two paragraphs."
	if got := Resolve(in); got != in {
		t.Errorf("got %q, want unchanged input", got)
	}
}

func TestResolvePrintedPageNA(t *testing.T) {
	in := "unnumbered page.\n" +
		"=-- End Printed Page N/A  --=\n" +
		"=-- Begin Page 2  --=\n" +
		"next page."

	got := Resolve(in)
	want := "unnumbered page.\n\nnext page."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
