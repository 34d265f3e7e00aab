package task

import (
	"context"
	"log/slog"
	"sync"
)

// Progress is a snapshot of a task's reported progress.
type Progress struct {
	Step  string
	Done  int
	Total int // 0 when unknown
}

// Monitor exposes cancellation and records progress for one task.
// It is safe for concurrent use.
type Monitor struct {
	ctx    context.Context
	task   string
	logger *slog.Logger

	mu       sync.Mutex
	progress Progress
}

func newMonitor(ctx context.Context, task string, logger *slog.Logger) *Monitor {
	return &Monitor{ctx: ctx, task: task, logger: logger}
}

// NewMonitor creates a standalone monitor bound to ctx, for running work
// synchronously outside a Job.
func NewMonitor(ctx context.Context, task string, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return newMonitor(ctx, task, logger)
}

// Context returns the task's context. It is cancelled when the job is.
func (m *Monitor) Context() context.Context {
	return m.ctx
}

// IsCanceled reports whether the task was asked to stop.
func (m *Monitor) IsCanceled() bool {
	return m.ctx.Err() != nil
}

// BeginTask starts a new step. total is the expected amount of work, or 0.
func (m *Monitor) BeginTask(step string, total int) {
	m.mu.Lock()
	m.progress = Progress{Step: step, Total: total}
	m.mu.Unlock()

	m.logger.Debug("task step", slog.String("task", m.task), slog.String("step", step), slog.Int("total", total))
}

// Worked records n units of work on the current step.
func (m *Monitor) Worked(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress.Done += n
}

// Progress returns the current progress.
func (m *Monitor) Progress() Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}
