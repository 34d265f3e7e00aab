// Package task runs a unit of work on a background worker with cancellation
// and progress reporting. The caller keeps its own goroutine free and
// collects the result, or the failure, through the returned Job.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// Func is a unit of work. It must poll the monitor (or ctx) for cancellation
// and return early, without an error, when asked to stop.
type Func[T any] func(ctx context.Context, mon *Monitor) (T, error)

// PanicError is returned by Wait when the work panicked.
type PanicError struct {
	Task  string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %s panicked: %v", e.Task, e.Value)
}

// Job is a handle to a started task.
type Job[T any] struct {
	name    string
	cancel  context.CancelFunc
	done    chan struct{}
	monitor *Monitor
	result  T
	err     error
}

// Start runs fn on a single background worker and returns immediately.
// A nil logger discards progress messages.
func Start[T any](ctx context.Context, name string, logger *slog.Logger, fn Func[T]) *Job[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	j := &Job[T]{
		name:    name,
		cancel:  cancel,
		done:    make(chan struct{}),
		monitor: newMonitor(gctx, name, logger),
	}

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{Task: name, Value: r, Stack: debug.Stack()}
			}
		}()
		res, err := fn(gctx, j.monitor)
		j.result = res
		return err
	})

	go func() {
		j.err = g.Wait()
		cancel()
		logger.Debug("task finished", slog.String("task", name), slog.Bool("failed", j.err != nil))
		close(j.done)
	}()

	return j
}

// Run starts fn and waits for it.
func Run[T any](ctx context.Context, name string, logger *slog.Logger, fn Func[T]) (T, error) {
	return Start(ctx, name, logger, fn).Wait()
}

// Wait blocks until the task finishes and returns its result.
func (j *Job[T]) Wait() (T, error) {
	<-j.done
	return j.result, j.err
}

// Cancel asks the task to stop. The task still finishes normally and Wait
// returns whatever it accumulated.
func (j *Job[T]) Cancel() {
	j.cancel()
}

// Done is closed when the task has finished.
func (j *Job[T]) Done() <-chan struct{} {
	return j.done
}

// Monitor returns the task's progress monitor.
func (j *Job[T]) Monitor() *Monitor {
	return j.monitor
}

// Name returns the task name.
func (j *Job[T]) Name() string {
	return j.name
}
