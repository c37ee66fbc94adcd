package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pagemill/pagemill/internal/gemini"
)

// Defaults for Config fields left zero.
const (
	// DefaultPayloadBudget keeps summed inlined request sizes safely
	// under the backend's 20 MiB hard limit.
	DefaultPayloadBudget = 18 * 1024 * 1024

	DefaultMaxRetries       = 3
	DefaultPollInterval     = 10 * time.Second
	DefaultRetryDelay       = 1 * time.Second
	DefaultStatusRetryDelay = 5 * time.Second
)

// Config tunes the engine's wave loop.
type Config struct {
	// PayloadBudget caps the summed request-size estimate per job.
	PayloadBudget int

	// MaxRetries bounds how many times a task may be requeued.
	MaxRetries int

	// PollInterval is the sleep between polling sweeps.
	PollInterval time.Duration

	// RetryDelay is the pause before starting a retry wave.
	RetryDelay time.Duration

	// StatusRetryDelay is the pause after a failed status check for one
	// job before moving on to the next.
	StatusRetryDelay time.Duration

	Logger *slog.Logger
}

// Engine runs submit→poll→validate waves over a pending task queue until
// it drains. Control flow is single-threaded: concurrency lives on the
// backend, which runs all jobs of a wave at once.
type Engine struct {
	backend   gemini.BatchService
	validator Validator
	build     RequestBuilder
	cfg       Config
	logger    *slog.Logger
}

// Report summarizes one run.
type Report struct {
	// Results holds every accepted (page mapping, response text) pair.
	Results []Result

	// Dropped lists the page groups permanently lost after exhausting
	// retries. A non-empty Dropped is reported, not fatal.
	Dropped [][]int
}

// New creates an engine. The backend client is injected so tests can run
// waves against a scripted fake.
func New(backend gemini.BatchService, validator Validator, build RequestBuilder, cfg Config) *Engine {
	if cfg.PayloadBudget == 0 {
		cfg.PayloadBudget = DefaultPayloadBudget
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.StatusRetryDelay == 0 {
		cfg.StatusRetryDelay = DefaultStatusRetryDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		backend:   backend,
		validator: validator,
		build:     build,
		cfg:       cfg,
		logger:    logger.With("component", "engine"),
	}
}

// activeJob is a submitted batch job awaiting completion, paired with
// the tasks its requests were built from.
type activeJob struct {
	name  string
	tasks []Task
	done  bool
}

// Run processes tasks to completion. Every task ends up either in the
// report's Results (validated response) or Dropped (retries exhausted);
// no page group is lost silently. Run returns early only on context
// cancellation, with the report accumulated so far.
func (e *Engine) Run(ctx context.Context, tasks []Task) (*Report, error) {
	report := &Report{}
	pending := make([]Task, len(tasks))
	copy(pending, tasks)

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		wave := pending
		pending = nil

		specs := packJobs(wave, e.build, e.cfg.PayloadBudget)
		e.logger.Info("submitting batch jobs", "jobs", len(specs), "tasks", len(wave))

		active := e.submit(ctx, specs, &pending, report)
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if len(active) == 0 {
			if len(pending) > 0 {
				if err := sleepCtx(ctx, e.cfg.RetryDelay); err != nil {
					return report, err
				}
			}
			continue
		}

		if err := e.poll(ctx, active, &pending, report); err != nil {
			return report, err
		}

		if len(pending) > 0 {
			e.logger.Info("tasks scheduled for retry", "count", len(pending))
			if err := sleepCtx(ctx, e.cfg.RetryDelay); err != nil {
				return report, err
			}
		}
	}

	return report, nil
}

// submit creates one batch job per spec. A failed creation funnels every
// task in that job straight into the retry queue.
func (e *Engine) submit(ctx context.Context, specs []jobSpec, pending *[]Task, report *Report) []*activeJob {
	var active []*activeJob
	for i, spec := range specs {
		if ctx.Err() != nil {
			return active
		}

		displayName := fmt.Sprintf("ocr-%s", uuid.NewString()[:8])
		e.logger.Info("creating batch job",
			"job", i+1, "of", len(specs),
			"requests", len(spec.requests),
			"size_estimate", spec.size)

		job, err := e.backend.CreateBatch(ctx, displayName, spec.requests)
		if err != nil {
			e.logger.Error("failed to create batch job", "error", err)
			for _, t := range spec.tasks {
				e.requeue(t, pending, report)
			}
			continue
		}
		active = append(active, &activeJob{name: job.Name, tasks: spec.tasks})
	}
	return active
}

// poll sweeps all non-terminal jobs round-robin until every job is
// terminal, sleeping PollInterval between sweeps. A transport error on
// one job's status check delays briefly and leaves that job for the next
// sweep without affecting the others. There is no overall wave timeout:
// batch workloads have no latency budget, and cancellation comes from
// the context.
func (e *Engine) poll(ctx context.Context, active []*activeJob, pending *[]Task, report *Report) error {
	remaining := len(active)
	start := time.Now()

	for remaining > 0 {
		for i, aj := range active {
			if aj.done {
				continue
			}

			job, err := e.backend.GetBatch(ctx, aj.name)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				e.logger.Warn("failed to get job status", "job", aj.name, "error", err)
				if err := sleepCtx(ctx, e.cfg.StatusRetryDelay); err != nil {
					return err
				}
				continue
			}

			if !job.Done {
				continue
			}

			e.logger.Info("batch job finished",
				"job", i+1, "of", len(active),
				"state", job.State,
				"elapsed", time.Since(start).Round(time.Second))

			if job.Succeeded() {
				e.collect(job, aj.tasks, pending, report)
			} else {
				e.logger.Error("batch job failed", "job", aj.name, "state", job.State, "error", job.Error)
				for _, t := range aj.tasks {
					e.requeue(t, pending, report)
				}
			}

			aj.done = true
			remaining--
		}

		if remaining > 0 {
			e.logger.Debug("waiting for batch jobs",
				"remaining", remaining,
				"elapsed", time.Since(start).Round(time.Second))
			if err := sleepCtx(ctx, e.cfg.PollInterval); err != nil {
				return err
			}
		}
	}
	return nil
}

// collect validates each response of a succeeded job. Failures are
// isolated to the task: one rejected response never affects siblings.
func (e *Engine) collect(job *gemini.BatchJob, tasks []Task, pending *[]Task, report *Report) {
	for idx, task := range tasks {
		if idx >= len(job.Responses) {
			e.logger.Warn("missing response", "pages", task.Pages)
			e.requeue(task, pending, report)
			continue
		}

		resp := job.Responses[idx]
		if resp.Error != "" {
			e.logger.Warn("response error", "pages", task.Pages, "error", resp.Error)
			e.requeue(task, pending, report)
			continue
		}

		if err := e.validator.Validate(task.Pages, resp.Text); err != nil {
			e.logger.Warn("validation failed", "pages", task.Pages, "reason", err)
			e.requeue(task, pending, report)
			continue
		}

		report.Results = append(report.Results, Result{Pages: task.Pages, Text: resp.Text})
	}
}

// requeue puts a failed task back on the pending queue with its retry
// counter bumped, or drops it permanently once the bound is exhausted.
func (e *Engine) requeue(t Task, pending *[]Task, report *Report) {
	if t.Retries < e.cfg.MaxRetries {
		e.logger.Info("retrying task",
			"pages", t.Pages,
			"attempt", t.Retries+2,
			"max_attempts", e.cfg.MaxRetries+1)
		*pending = append(*pending, Task{Pages: t.Pages, Payload: t.Payload, Retries: t.Retries + 1})
		return
	}
	e.logger.Error("max retries reached, dropping pages", "pages", t.Pages)
	report.Dropped = append(report.Dropped, t.Pages)
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
