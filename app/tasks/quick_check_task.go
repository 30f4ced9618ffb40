package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"biliwatch/app/watcher"
)

type QuickCheckTask struct {
	Task
	watcher *watcher.Watcher
}

func NewQuickCheckTask(w *watcher.Watcher) *QuickCheckTask {
	return &QuickCheckTask{
		Task:    NewTask(TaskTypeQuickCheck, 0),
		watcher: w,
	}
}

func (t *QuickCheckTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.watcher.QuickCheck(ctx); err != nil {
		return fmt.Errorf("quick check failed: %w", err)
	}

	slog.Debug("Task completed", "type", "QuickCheck", "duration", t.GetDuration())

	return nil
}
