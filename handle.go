package multilang

import (
	"log/slog"

	"github.com/streamshard/multilang-go/internal/task"
)

// Handle represents a single pending or completed asynchronous computation.
//
// A Handle carries either a successful result or a failure cause. Await it
// with Result (bounding the wait with a context), observe completion via
// Done, or abandon the task with Cancel. Handles are transient and
// independently owned by whoever requested the task.
type Handle[T any] = task.Handle[T]

// Executor is a bounded worker pool for running reader tasks. Inject one
// with WithExecutor to share a pool across several readers; otherwise each
// reader owns a private pool.
type Executor = task.Executor

// NewExecutor creates an executor with the given number of workers. Values
// <= 0 use a small default pool. The caller is responsible for closing it.
func NewExecutor(log *slog.Logger, workers int) *Executor {
	if log == nil {
		log = NopLogger()
	}

	return task.NewExecutor(log, workers)
}
