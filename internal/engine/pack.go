package engine

import "github.com/pagemill/pagemill/internal/gemini"

// jobSpec is one batch job under construction: requests and their source
// tasks in 1:1 positional correspondence.
type jobSpec struct {
	requests []gemini.GenerateRequest
	tasks    []Task
	size     int
}

// packJobs packs tasks into jobs whose summed request-size estimate
// stays under budget. Greedy first-fit in arrival order: no reordering,
// so packing is deterministic even if suboptimal. A single oversized
// request still gets a job of its own; the backend is the final arbiter
// of hard limits.
func packJobs(tasks []Task, build RequestBuilder, budget int) []jobSpec {
	var specs []jobSpec
	current := jobSpec{}

	for _, task := range tasks {
		req := build(task)
		size := req.EstimatedSize()

		if current.size+size > budget && len(current.requests) > 0 {
			specs = append(specs, current)
			current = jobSpec{}
		}

		current.requests = append(current.requests, req)
		current.tasks = append(current.tasks, task)
		current.size += size
	}

	if len(current.requests) > 0 {
		specs = append(specs, current)
	}
	return specs
}
