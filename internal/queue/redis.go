package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const pollTimeout = time.Second

// RedisQueue keeps each queue as a Redis list: producers LPUSH, consumers BLMOVE each job
// onto <queue>:active and remove it from there once its outcome is recorded. Jobs that
// exhaust their attempts are moved to the <queue>:failed list.
type RedisQueue struct {
	client *redis.Client
	opts   Options

	mu       sync.Mutex
	handlers map[string]Handler
	closed   atomic.Bool
}

func NewRedisQueue(client *redis.Client, opts Options) *RedisQueue {
	return &RedisQueue{
		client:   client,
		opts:     opts.withDefaults(),
		handlers: make(map[string]Handler),
	}
}

func FailedKey(name string) string {
	return name + ":failed"
}

// ActiveKey holds the jobs being processed. Entries left there belong to a consumer that
// died mid-job; Recover puts them back.
func ActiveKey(name string) string {
	return name + ":active"
}

func (q *RedisQueue) Enqueue(ctx context.Context, name string, payload any) error {
	if q.closed.Load() {
		return ErrClosed
	}

	job, err := newJob(name, payload)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := q.push(ctx, name, job); err != nil {
		return err
	}

	jobsEnqueued.WithLabelValues(name).Inc()
	return nil
}

func (q *RedisQueue) push(ctx context.Context, key string, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := q.client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to push job to %s: %w", key, err)
	}
	return nil
}

func (q *RedisQueue) Process(name string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[name] = h
}

func (q *RedisQueue) Run(ctx context.Context) error {
	q.mu.Lock()
	handlers := make(map[string]Handler, len(q.handlers))
	for name, h := range q.handlers {
		handlers[name] = h
	}
	q.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for name, h := range handlers {
		for range q.opts.Concurrency {
			g.Go(func() error {
				q.consume(ctx, name, h)
				return nil
			})
		}
		slog.Info("queue consumer started", "queue", name, "concurrency", q.opts.Concurrency)
	}
	return g.Wait()
}

func (q *RedisQueue) consume(ctx context.Context, name string, h Handler) {
	for ctx.Err() == nil {
		raw, err := q.client.BLMove(ctx, name, ActiveKey(name), "RIGHT", "LEFT", pollTimeout).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("failed to poll queue", "queue", name, "error", err)
			sleep(ctx, pollTimeout)
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			slog.Error("dropping malformed job", "queue", name, "error", err)
			q.ack(context.WithoutCancel(ctx), name, raw)
			continue
		}
		job.Queue = name

		q.dispatch(ctx, h, &job, raw)
	}
}

func (q *RedisQueue) dispatch(ctx context.Context, h Handler, job *Job, raw string) {
	// Requeueing must survive shutdown, so it does not use the consumer context.
	bg := context.WithoutCancel(ctx)

	switch run(ctx, h, job, q.opts.MaxAttempts) {
	case outcomeRetry:
		sleep(ctx, q.opts.RetryDelay)
		q.requeue(bg, job.Queue, job)
	case outcomeInterrupted:
		q.requeue(bg, job.Queue, job)
	case outcomeFailed:
		q.requeue(bg, FailedKey(job.Queue), job)
	}

	// Only after the job landed somewhere else, so a crash in between duplicates it instead of
	// losing it.
	q.ack(bg, job.Queue, raw)
}

func (q *RedisQueue) ack(ctx context.Context, name, raw string) {
	if err := q.client.LRem(ctx, ActiveKey(name), 1, raw).Err(); err != nil {
		slog.Error("failed to remove job from active list", "queue", name, "error", err)
	}
}

func (q *RedisQueue) requeue(ctx context.Context, key string, job *Job) {
	if err := q.push(ctx, key, job); err != nil {
		slog.Error("failed to requeue job", "key", key, "job_id", job.ID, "error", err)
	}
}

// RetryFailed moves every dead-lettered job of the queue back with a fresh attempt count.
func (q *RedisQueue) RetryFailed(ctx context.Context, name string) (int, error) {
	moved := 0
	for {
		data, err := q.client.RPop(ctx, FailedKey(name)).Result()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("failed to pop failed job: %w", err)
		}

		var job Job
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			slog.Error("dropping malformed failed job", "queue", name, "error", err)
			continue
		}
		job.Attempts = 0

		if err := q.push(ctx, name, &job); err != nil {
			return moved, err
		}
		moved++
	}
}

// Recover moves jobs stranded on the active list back onto the queue, to be picked next.
// Run it only while no worker consumes the queue, or jobs in progress get run twice.
func (q *RedisQueue) Recover(ctx context.Context, name string) (int, error) {
	moved := 0
	for {
		err := q.client.LMove(ctx, ActiveKey(name), name, "RIGHT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("failed to recover job: %w", err)
		}
		moved++
	}
}

// Counts returns the number of waiting and dead-lettered jobs of the queue.
func (q *RedisQueue) Counts(ctx context.Context, name string) (waiting, failed int64, err error) {
	waiting, err = q.client.LLen(ctx, name).Result()
	if err != nil {
		return 0, 0, err
	}
	failed, err = q.client.LLen(ctx, FailedKey(name)).Result()
	if err != nil {
		return 0, 0, err
	}
	return waiting, failed, nil
}

func (q *RedisQueue) Close() error {
	q.closed.Store(true)
	return nil
}
