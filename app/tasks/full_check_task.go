package tasks

import (
	"context"
	"log/slog"

	"biliwatch/app/watcher"
)

type FullCheckTask struct {
	Task
	watcher *watcher.Watcher
}

func NewFullCheckTask(w *watcher.Watcher) *FullCheckTask {
	return &FullCheckTask{
		Task:    NewTask(TaskTypeFullCheck, 0),
		watcher: w,
	}
}

func (t *FullCheckTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Per-creator failures are tracked inside the watcher and never abort
	// the sweep
	t.watcher.FullCheck(ctx)

	slog.Debug("Task completed", "type", "FullCheck", "duration", t.GetDuration())

	return nil
}
