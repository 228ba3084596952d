package queue

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const memoryBuffer = 1024

// MemoryQueue is an in-process queue for development and tests. Jobs do not survive a restart.
type MemoryQueue struct {
	opts Options

	mu       sync.Mutex
	chans    map[string]chan *Job
	handlers map[string]Handler
	failed   map[string][]*Job
	closed   atomic.Bool
	inflight sync.WaitGroup
}

func NewMemoryQueue(opts Options) *MemoryQueue {
	return &MemoryQueue{
		opts:     opts.withDefaults(),
		chans:    make(map[string]chan *Job),
		handlers: make(map[string]Handler),
		failed:   make(map[string][]*Job),
	}
}

func (q *MemoryQueue) channel(name string) chan *Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	ch, ok := q.chans[name]
	if !ok {
		ch = make(chan *Job, memoryBuffer)
		q.chans[name] = ch
	}
	return ch
}

func (q *MemoryQueue) Enqueue(ctx context.Context, name string, payload any) error {
	if q.closed.Load() {
		return ErrClosed
	}

	job, err := newJob(name, payload)
	if err != nil {
		return err
	}

	select {
	case q.channel(name) <- job:
		jobsEnqueued.WithLabelValues(name).Inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Process(name string, h Handler) {
	q.channel(name)
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[name] = h
}

func (q *MemoryQueue) Run(ctx context.Context) error {
	q.mu.Lock()
	handlers := make(map[string]Handler, len(q.handlers))
	for name, h := range q.handlers {
		handlers[name] = h
	}
	q.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for name, h := range handlers {
		ch := q.channel(name)
		for range q.opts.Concurrency {
			g.Go(func() error {
				for {
					select {
					case <-ctx.Done():
						return nil
					case job := <-ch:
						q.dispatch(ctx, h, job, ch)
					}
				}
			})
		}
		slog.Info("queue consumer started", "queue", name, "concurrency", q.opts.Concurrency)
	}
	err := g.Wait()
	q.inflight.Wait()
	return err
}

func (q *MemoryQueue) dispatch(ctx context.Context, h Handler, job *Job, ch chan *Job) {
	switch run(ctx, h, job, q.opts.MaxAttempts) {
	case outcomeRetry:
		// Retries wait off the consumer goroutine so the queue keeps moving.
		q.inflight.Add(1)
		go func() {
			defer q.inflight.Done()
			sleep(ctx, q.opts.RetryDelay)
			q.push(ch, job)
		}()
	case outcomeInterrupted:
		q.push(ch, job)
	case outcomeFailed:
		q.mu.Lock()
		q.failed[job.Queue] = append(q.failed[job.Queue], job)
		q.mu.Unlock()
	}
}

func (q *MemoryQueue) push(ch chan *Job, job *Job) {
	select {
	case ch <- job:
	default:
		slog.Error("queue full, dropping job", "queue", job.Queue, "job_id", job.ID)
	}
}

func (q *MemoryQueue) RetryFailed(ctx context.Context, name string) (int, error) {
	q.mu.Lock()
	jobs := q.failed[name]
	delete(q.failed, name)
	q.mu.Unlock()

	ch := q.channel(name)
	for i, job := range jobs {
		job.Attempts = 0
		select {
		case ch <- job:
		case <-ctx.Done():
			q.mu.Lock()
			q.failed[name] = append(jobs[i:], q.failed[name]...)
			q.mu.Unlock()
			return i, ctx.Err()
		}
	}
	return len(jobs), nil
}

// Recover is a no-op: jobs in progress live and die with the process.
func (q *MemoryQueue) Recover(ctx context.Context, name string) (int, error) {
	return 0, nil
}

func (q *MemoryQueue) Counts(ctx context.Context, name string) (waiting, failed int64, err error) {
	ch := q.channel(name)
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(ch)), int64(len(q.failed[name])), nil
}

func (q *MemoryQueue) Close() error {
	q.closed.Store(true)
	return nil
}
