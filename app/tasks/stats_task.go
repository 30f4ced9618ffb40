package tasks

import (
	"context"

	"biliwatch/app/watcher"
)

type StatsTask struct {
	Task
	watcher *watcher.Watcher
}

func NewStatsTask(w *watcher.Watcher) *StatsTask {
	return &StatsTask{
		Task:    NewTask(TaskTypeStats, 0),
		watcher: w,
	}
}

func (t *StatsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.watcher.LogStats()

	return nil
}
