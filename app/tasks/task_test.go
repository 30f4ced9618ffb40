package tasks

import (
	"context"
	"errors"
	"testing"

	"biliwatch/app/bili"
	"biliwatch/app/database"
)

type stubRepo struct {
	purged   int64
	purgeErr error
	gotDays  int
}

func (s *stubRepo) IsDelivered(itemID string) (bool, error) { return false, nil }
func (s *stubRepo) RecordDelivery(item bili.Item) error     { return nil }
func (s *stubRepo) PurgeOlderThan(days int) (int64, error) {
	s.gotDays = days
	return s.purged, s.purgeErr
}
func (s *stubRepo) GetRecentDeliveries(authorID string, limit int) ([]database.DeliveryRecord, error) {
	return nil, nil
}
func (s *stubRepo) GetStats() (database.Stats, error) { return database.Stats{}, nil }

func TestNewTaskRetryBudget(t *testing.T) {
	task := NewTask(TaskTypeQuickCheck, 0)
	if task.CanRetry() {
		t.Error("Task with MaxRetries 0 must not be retryable")
	}

	task = NewTask(TaskTypeCleanup, 2)
	if !task.CanRetry() {
		t.Error("Fresh task with MaxRetries 2 should be retryable")
	}
	task.IncrementRetryCount()
	task.IncrementRetryCount()
	if task.CanRetry() {
		t.Error("Task at its retry budget must not be retryable")
	}
}

func TestTaskDurationBeforeStart(t *testing.T) {
	task := NewTask(TaskTypeStats, 0)
	if task.GetDuration() != 0 {
		t.Error("Unstarted task should report zero duration")
	}
}

func TestCleanupTaskExecute(t *testing.T) {
	repo := &stubRepo{purged: 7}
	task := NewCleanupTask(repo, 30)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if repo.gotDays != 30 {
		t.Errorf("Expected purge window of 30 days, got %d", repo.gotDays)
	}
}

func TestCleanupTaskPropagatesError(t *testing.T) {
	repo := &stubRepo{purgeErr: errors.New("database is locked")}
	task := NewCleanupTask(repo, 30)

	if err := task.Execute(context.Background()); err == nil {
		t.Error("Purge failure should surface from Execute")
	}
}
