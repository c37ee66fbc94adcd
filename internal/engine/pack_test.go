package engine

import (
	"strings"
	"testing"

	"github.com/pagemill/pagemill/internal/gemini"
)

func payloadTask(pages []int, size int) Task {
	return Task{Pages: pages, Payload: []byte(strings.Repeat("x", size))}
}

func rawBuilder(t Task) gemini.GenerateRequest {
	return gemini.GenerateRequest{
		Contents: []gemini.Content{{
			Parts: []gemini.Part{{Text: string(t.Payload)}},
		}},
	}
}

func TestPackJobsRespectsBudget(t *testing.T) {
	tasks := []Task{
		payloadTask([]int{1}, 40),
		payloadTask([]int{2}, 40),
		payloadTask([]int{3}, 40),
		payloadTask([]int{4}, 10),
	}

	specs := packJobs(tasks, rawBuilder, 100)
	if len(specs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(specs))
	}
	if len(specs[0].tasks) != 2 || len(specs[1].tasks) != 2 {
		t.Errorf("expected 2+2 split, got %d+%d", len(specs[0].tasks), len(specs[1].tasks))
	}
	for i, spec := range specs {
		if spec.size > 100 {
			t.Errorf("job %d size %d exceeds budget", i, spec.size)
		}
	}
}

func TestPackJobsOversizedTaskGetsOwnJob(t *testing.T) {
	tasks := []Task{
		payloadTask([]int{1}, 10),
		payloadTask([]int{2}, 500),
		payloadTask([]int{3}, 10),
	}

	specs := packJobs(tasks, rawBuilder, 100)
	if len(specs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(specs))
	}
	if len(specs[1].tasks) != 1 || specs[1].tasks[0].Pages[0] != 2 {
		t.Errorf("oversized task not isolated: %+v", specs[1].tasks)
	}
}

func TestPackJobsKeepsTaskRequestAlignment(t *testing.T) {
	tasks := []Task{
		payloadTask([]int{1, 2}, 30),
		payloadTask([]int{3, 4}, 30),
		payloadTask([]int{5}, 30),
	}

	for _, spec := range packJobs(tasks, rawBuilder, 70) {
		if len(spec.requests) != len(spec.tasks) {
			t.Fatalf("requests/tasks mismatch: %d vs %d", len(spec.requests), len(spec.tasks))
		}
		for i, task := range spec.tasks {
			if spec.requests[i].Contents[0].Parts[0].Text != string(task.Payload) {
				t.Errorf("request %d not built from its task", i)
			}
		}
	}
}

func TestPackJobsEmpty(t *testing.T) {
	if specs := packJobs(nil, rawBuilder, 100); specs != nil {
		t.Errorf("expected no jobs, got %d", len(specs))
	}
}
