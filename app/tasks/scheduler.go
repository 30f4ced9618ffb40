package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"biliwatch/app/cfg"
	"biliwatch/app/database"
	"biliwatch/app/watcher"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	cleanupInterval = 24 * time.Hour
	statsInterval   = time.Hour
)

// Scheduler runs all tasks on a single worker goroutine. Check tasks must
// never overlap, so serialization happens here rather than with locks in
// the watcher.
type Scheduler struct {
	watcher       *watcher.Watcher
	repo          database.DeliveryRepository
	quickInterval time.Duration
	fullInterval  time.Duration
	retentionDays int
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	taskQueue     chan TaskInterface
}

func NewScheduler(w *watcher.Watcher, repo database.DeliveryRepository) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		watcher:       w,
		repo:          repo,
		quickInterval: time.Duration(cfg.QuickCheckInterval) * time.Minute,
		fullInterval:  time.Duration(cfg.FullCheckInterval) * time.Minute,
		retentionDays: cfg.RetentionDays,
		ctx:           ctx,
		cancel:        cancel,
		taskQueue:     make(chan TaskInterface, 32),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		quickTicker := time.NewTicker(s.quickInterval)
		defer quickTicker.Stop()
		fullTicker := time.NewTicker(s.fullInterval)
		defer fullTicker.Stop()
		cleanupTicker := time.NewTicker(cleanupInterval)
		defer cleanupTicker.Stop()
		statsTicker := time.NewTicker(statsInterval)
		defer statsTicker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-quickTicker.C:
				s.enqueue(NewQuickCheckTask(s.watcher))
			case <-fullTicker.C:
				s.enqueue(NewFullCheckTask(s.watcher))
			case <-cleanupTicker.C:
				s.enqueue(NewCleanupTask(s.repo, s.retentionDays))
			case <-statsTicker.C:
				s.enqueue(NewStatsTask(s.watcher))
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueStartupTasks seeds the queue so the first checks do not wait out a
// full interval after boot.
func (s *Scheduler) enqueueStartupTasks() {
	s.enqueue(NewCleanupTask(s.repo, s.retentionDays))
	s.enqueue(NewFullCheckTask(s.watcher))
	s.enqueue(NewQuickCheckTask(s.watcher))
}

func (s *Scheduler) enqueue(task TaskInterface) {
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue task", "type", string(task.GetType()), "error", err)
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		}
	}
}
