// Package task provides cancellable, independently awaitable units of
// asynchronous work and a bounded worker pool to run them on.
package task

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/streamshard/multilang-go/internal/errors"
)

const (
	// defaultWorkers is the worker pool size when none is configured.
	defaultWorkers = 4
	// queueDepth is the number of submitted tasks that may wait for a free
	// worker before Submit reports ErrExecutorBusy.
	queueDepth = 16
)

// Handle represents a single pending or completed asynchronous computation.
//
// A Handle carries either a successful result or a failure cause. It is
// transient: it belongs to whoever requested the task and is discarded after
// the result is consumed.
type Handle[T any] struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	done chan struct{}
	once sync.Once

	result T
	err    error
}

// NewHandle creates an unresolved handle whose task context descends from
// parent. Cancelling parent cancels the task.
func NewHandle[T any](parent context.Context) *Handle[T] {
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)

	return &Handle[T]{
		id:     ulid.Make().String(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID returns the unique identifier of this task, used to correlate log lines.
func (h *Handle[T]) ID() string {
	return h.id
}

// Done returns a channel that is closed when the task completes, fails, or
// is cancelled.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Cancel cancels the task's context. A task blocked at a suspension point
// observes the cancellation promptly; lines it already consumed from the
// stream are not rolled back.
//
// Cancel is safe to call multiple times and after completion.
func (h *Handle[T]) Cancel() {
	h.cancel()
}

// Result blocks until the task completes and returns its result or failure
// cause. The wait (not the task) is bounded by ctx: if ctx expires first,
// Result returns ctx's error and the task keeps running.
func (h *Handle[T]) Result(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.result, h.err

	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}

// complete resolves the handle exactly once and releases its task context.
func (h *Handle[T]) complete(result T, err error) {
	h.once.Do(func() {
		h.result = result
		h.err = err
		h.cancel()
		close(h.done)
	})
}

// Spawn submits fn to the executor and wires its outcome into h. fn receives
// the handle's task context and must honor its cancellation at every
// blocking point.
//
// If the executor rejects the submission, h resolves immediately with the
// rejection error.
func Spawn[T any](e *Executor, h *Handle[T], fn func(ctx context.Context) (T, error)) {
	if err := e.Submit(func() {
		result, err := fn(h.ctx)
		h.complete(result, err)
	}); err != nil {
		var zero T

		h.complete(zero, err)
	}
}

// Executor is a bounded worker pool for running submitted tasks.
//
// Tasks are executed on a fixed set of worker goroutines. Submission never
// blocks: when all workers are busy and the queue is full, Submit reports
// ErrExecutorBusy instead of waiting.
type Executor struct {
	log   *slog.Logger
	queue chan func()
	g     *errgroup.Group
	stop  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewExecutor creates an executor with the given number of workers. Values
// <= 0 use a small default pool.
func NewExecutor(log *slog.Logger, workers int) *Executor {
	if workers <= 0 {
		workers = defaultWorkers
	}

	e := &Executor{
		log:   log.With("component", "executor"),
		queue: make(chan func(), queueDepth),
		g:     &errgroup.Group{},
		stop:  make(chan struct{}),
	}

	for range workers {
		e.g.Go(e.work)
	}

	e.log.Debug("Executor started", "workers", workers)

	return e
}

func (e *Executor) work() error {
	for {
		select {
		case <-e.stop:
			return nil
		case fn := <-e.queue:
			fn()
		}
	}
}

// Submit enqueues fn for execution on a worker. It returns ErrExecutorClosed
// after Close and ErrExecutorBusy when the queue is full.
func (e *Executor) Submit(fn func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.ErrExecutorClosed
	}

	select {
	case e.queue <- fn:
		return nil
	default:
		return errors.ErrExecutorBusy
	}
}

// Close stops the executor and waits for in-flight tasks to finish. Tasks
// that were queued but never picked up by a worker are still run, so no
// handle is left pending. Close is safe to call multiple times.
func (e *Executor) Close() {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()

		return
	}

	e.closed = true
	e.mu.Unlock()

	close(e.stop)
	_ = e.g.Wait()

	for {
		select {
		case fn := <-e.queue:
			fn()
		default:
			e.log.Debug("Executor closed")

			return
		}
	}
}
