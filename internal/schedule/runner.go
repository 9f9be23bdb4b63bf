package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Runner executes a task immediately and then on a fixed interval until the
// context is cancelled. A failing run is logged and does not stop the loop.
type Runner struct {
	task     Task
	interval time.Duration
}

func NewRunner(task Task, interval time.Duration) *Runner {
	return &Runner{
		task:     task,
		interval: interval,
	}
}

func (r *Runner) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		start := time.Now()
		if err := r.task.Run(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			slog.Error("task run failed", "task", r.task.Name(), "error", err)
		} else {
			slog.Info("task run finished", "task", r.task.Name(), "elapsed", time.Since(start))
		}

		timer.Reset(r.interval)
	}
}
