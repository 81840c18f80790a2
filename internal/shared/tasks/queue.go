package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"workspace-backend/internal/shared/metrics"
	"workspace-backend/internal/shared/telemetry"
)

// Func is a best-effort unit of work. Its error is logged, never returned to a caller.
type Func func(ctx context.Context) error

// Enqueuer schedules best-effort work off the request path.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, fn Func) bool
}

// Options controls queue capacity and per-task limits.
type Options struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

const (
	defaultWorkers     = 4
	defaultQueueSize   = 256
	defaultTaskTimeout = 30 * time.Second
)

type task struct {
	name string
	ctx  context.Context
	fn   Func
}

// Queue is a bounded in-process queue drained by a fixed worker pool.
type Queue struct {
	ch      chan task
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New starts a queue with opts.Workers goroutines.
func New(opts Options) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = defaultTaskTimeout
	}

	q := &Queue{
		ch:      make(chan task, opts.QueueSize),
		timeout: opts.TaskTimeout,
	}
	q.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go q.worker()
	}
	return q
}

// Enqueue schedules fn without blocking. It returns false when the task was dropped.
// The task context keeps ctx values (request id) but not its cancellation.
func (q *Queue) Enqueue(ctx context.Context, name string, fn Func) bool {
	if fn == nil {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		dropped(name, "closed")
		return false
	}

	select {
	case q.ch <- task{name: name, ctx: context.WithoutCancel(ctx), fn: fn}:
		return true
	default:
		dropped(name, "full")
		return false
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish or ctx to expire.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for t := range q.ch {
		ctx, cancel := context.WithTimeout(t.ctx, q.timeout)
		run(ctx, t.name, t.fn)
		cancel()
	}
}

// Inline runs tasks synchronously on the caller's goroutine with the same
// error and panic handling as Queue.
type Inline struct{}

// Enqueue runs fn immediately.
func (Inline) Enqueue(ctx context.Context, name string, fn Func) bool {
	if fn == nil {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}
	run(context.WithoutCancel(ctx), name, fn)
	return true
}

var errPanic = errors.New("task panicked")

func run(ctx context.Context, name string, fn Func) {
	start := time.Now()
	err := safeCall(ctx, fn)
	if err == nil {
		telemetry.Debug("task.complete", map[string]any{
			"task":        name,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return
	}
	metrics.IncTaskFailed()
	telemetry.Warn("task.failed", map[string]any{
		"task":        name,
		"duration_ms": time.Since(start).Milliseconds(),
		"error":       err,
	})
}

func safeCall(ctx context.Context, fn Func) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", errPanic, rec)
		}
	}()
	return fn(ctx)
}

func dropped(name, reason string) {
	metrics.IncTaskDropped()
	telemetry.Warn("task.dropped", map[string]any{
		"task":   name,
		"reason": reason,
	})
}

var (
	_ Enqueuer = (*Queue)(nil)
	_ Enqueuer = Inline{}
)
