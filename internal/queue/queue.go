// Package queue carries background jobs between the request path and the workers.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	FileQueue = "fileQueue"
	UserQueue = "userQueue"
)

var ErrClosed = errors.New("queue closed")

type Job struct {
	ID       string          `json:"id"`
	Queue    string          `json:"queue"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Decode unmarshals the job payload into v.
func (j *Job) Decode(v any) error {
	return json.Unmarshal(j.Payload, v)
}

// Handler processes one job. A returned error fails the attempt.
type Handler func(ctx context.Context, job *Job) error

// Enqueuer is the producer side, the only part the request path needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any) error
}

type Queue interface {
	Enqueuer
	// Process registers the consumer of a queue. Must be called before Run.
	Process(name string, h Handler)
	// Run consumes all registered queues until ctx is done.
	Run(ctx context.Context) error
	// Close stops accepting new jobs.
	Close() error
}

// Inspector exposes dead-letter handling to operator tooling.
type Inspector interface {
	RetryFailed(ctx context.Context, name string) (int, error)
	// Recover requeues jobs whose consumer died before recording an outcome.
	Recover(ctx context.Context, name string) (int, error)
	Counts(ctx context.Context, name string) (waiting, failed int64, err error)
}

type Options struct {
	Concurrency int           // Consumers per registered queue
	MaxAttempts int           // Attempts before a job is dead-lettered
	RetryDelay  time.Duration // Pause before a failed job is retried
}

func (o Options) withDefaults() Options {
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 1
	}
	return o
}

func newJob(name string, payload any) (*Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Job{
		ID:      uuid.New().String(),
		Queue:   name,
		Payload: data,
	}, nil
}

type outcome int

const (
	outcomeCompleted outcome = iota
	outcomeRetry
	outcomeFailed
	outcomeInterrupted
)

// run executes h and decides what happens to job next. Attempts is incremented for every
// attempt that was not interrupted by shutdown.
func run(ctx context.Context, h Handler, job *Job, maxAttempts int) outcome {
	start := time.Now()
	err := h(ctx, job)
	jobDuration.WithLabelValues(job.Queue).Observe(time.Since(start).Seconds())

	if err == nil {
		jobsTotal.WithLabelValues(job.Queue, "completed").Inc()
		slog.Debug("job completed", "queue", job.Queue, "job_id", job.ID)
		return outcomeCompleted
	}

	if ctx.Err() != nil {
		return outcomeInterrupted
	}

	job.Attempts++
	if job.Attempts < maxAttempts {
		jobsTotal.WithLabelValues(job.Queue, "retried").Inc()
		slog.Warn("job failed, retrying", "queue", job.Queue, "job_id", job.ID, "attempts", job.Attempts, "error", err)
		return outcomeRetry
	}

	jobsTotal.WithLabelValues(job.Queue, "failed").Inc()
	slog.Error("job failed", "queue", job.Queue, "job_id", job.ID, "attempts", job.Attempts, "error", err)
	return outcomeFailed
}

// sleep waits for d or until ctx is done, reporting whether the full delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
