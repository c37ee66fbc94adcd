// Package engine drives batch OCR extraction: it packs page-chunk tasks
// into size-bounded batch jobs, submits them, polls the jobs to
// completion, validates each task's response, and requeues failures for
// bounded retry until the pending queue drains.
package engine

import "github.com/pagemill/pagemill/internal/gemini"

// Task is one unit of extraction work: a standalone PDF payload covering
// an ordered set of absolute page numbers. Retries counts how many times
// the task has been requeued; the rest is immutable.
type Task struct {
	// Pages maps relative page indices (1-based position in this slice)
	// to absolute page numbers in the source document.
	Pages []int

	// Payload is the standalone PDF containing exactly those pages.
	Payload []byte

	// Retries is the number of requeues so far.
	Retries int
}

// RequestBuilder turns a task into one inference request. The pipeline
// supplies it so prompt wording stays out of the engine.
type RequestBuilder func(t Task) gemini.GenerateRequest

// Result pairs an accepted task's page mapping with the raw response
// text that passed validation.
type Result struct {
	Pages []int
	Text  string
}
