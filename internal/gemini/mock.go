package gemini

import (
	"context"
	"fmt"
	"sync"
)

// MockBatchService is a BatchService for testing. Jobs complete after a
// configurable number of polls; per-request responses come from
// RespondFn, which tests use to script success, invalid output, or
// per-request errors.
type MockBatchService struct {
	// PollsUntilDone is how many GetBatch calls a job takes to finish
	// (minimum 1).
	PollsUntilDone int

	// FailCreates makes the first N CreateBatch calls fail.
	FailCreates int

	// FailJob reports jobs as terminally failed instead of succeeded.
	FailJob bool

	// RespondFn produces the response text for one request. A returned
	// error becomes a per-request error in the finished job. Nil echoes
	// the request's prompt text.
	RespondFn func(req GenerateRequest) (string, error)

	mu          sync.Mutex
	jobs        map[string]*mockJob
	createCalls int
	getCalls    int
}

type mockJob struct {
	requests []GenerateRequest
	polls    int
}

// NewMockBatchService creates a mock backend that finishes jobs on the
// first poll.
func NewMockBatchService() *MockBatchService {
	return &MockBatchService{
		PollsUntilDone: 1,
		jobs:           make(map[string]*mockJob),
	}
}

// CreateBatch records a pending job.
func (m *MockBatchService) CreateBatch(ctx context.Context, displayName string, reqs []GenerateRequest) (*BatchJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls++
	if m.FailCreates > 0 {
		m.FailCreates--
		return nil, fmt.Errorf("mock create failure")
	}

	name := fmt.Sprintf("batches/mock-%d", m.createCalls)
	copied := make([]GenerateRequest, len(reqs))
	copy(copied, reqs)
	m.jobs[name] = &mockJob{requests: copied}

	return &BatchJob{Name: name, State: BatchStatePending}, nil
}

// GetBatch advances the job toward completion and returns its state.
func (m *MockBatchService) GetBatch(ctx context.Context, name string) (*BatchJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getCalls++
	job, ok := m.jobs[name]
	if !ok {
		return nil, fmt.Errorf("unknown job %q", name)
	}

	job.polls++
	threshold := m.PollsUntilDone
	if threshold < 1 {
		threshold = 1
	}
	if job.polls < threshold {
		return &BatchJob{Name: name, State: BatchStateRunning}, nil
	}

	if m.FailJob {
		return &BatchJob{
			Name:  name,
			Done:  true,
			State: BatchStateFailed,
			Error: "mock job failure",
		}, nil
	}

	result := &BatchJob{Name: name, Done: true, State: BatchStateSucceeded}
	for _, req := range job.requests {
		if m.RespondFn == nil {
			result.Responses = append(result.Responses, InlineResponse{Text: promptText(req)})
			continue
		}
		text, err := m.RespondFn(req)
		if err != nil {
			result.Responses = append(result.Responses, InlineResponse{Error: err.Error()})
			continue
		}
		result.Responses = append(result.Responses, InlineResponse{Text: text})
	}
	return result, nil
}

// CreateCalls returns the number of CreateBatch invocations.
func (m *MockBatchService) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

// GetCalls returns the number of GetBatch invocations.
func (m *MockBatchService) GetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}

func promptText(req GenerateRequest) string {
	for _, c := range req.Contents {
		for _, p := range c.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// Verify interface
var _ BatchService = (*MockBatchService)(nil)
