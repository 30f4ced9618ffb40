package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"biliwatch/app/database"
)

type CleanupTask struct {
	Task
	repo          database.DeliveryRepository
	retentionDays int
}

func NewCleanupTask(repo database.DeliveryRepository, retentionDays int) *CleanupTask {
	return &CleanupTask{
		Task:          NewTask(TaskTypeCleanup, 2),
		repo:          repo,
		retentionDays: retentionDays,
	}
}

func (t *CleanupTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	purged, err := t.repo.PurgeOlderThan(t.retentionDays)
	if err != nil {
		return fmt.Errorf("failed to purge delivery history: %w", err)
	}

	slog.Info("Task completed", "type", "Cleanup",
		"purged", purged,
		"retention_days", t.retentionDays,
		"duration", t.GetDuration())

	return nil
}
