package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"biliwatch/app/bili"
	"biliwatch/app/config"
	"biliwatch/app/database"
)

// A creator failing this many consecutive fallback checks is skipped for one
// cycle before being tried again.
const maxConsecutiveFailures = 5

// Watcher composes the tiered change-detection pipeline: cheap global probe,
// bounded global fetch, watch-list intersection, and per-item dedup-gated
// delivery. All mutable state (baseline watermark, failure counters) is owned
// here, never ambient.
type Watcher struct {
	client   FeedClient
	notifier Notifier
	repo     database.DeliveryRepository
	creators []config.Creator
	baseline Baseline
	failures map[string]int
	maxAge   time.Duration
	now      func() time.Time
}

func New(client FeedClient, notifier Notifier, repo database.DeliveryRepository,
	creators []config.Creator, stalenessDays int) *Watcher {
	return &Watcher{
		client:   client,
		notifier: notifier,
		repo:     repo,
		creators: creators,
		failures: make(map[string]int),
		maxAge:   time.Duration(stalenessDays) * 24 * time.Hour,
		now:      time.Now,
	}
}

// QuickCheck runs the tiered detection cycle. Each tier is a short-circuit
// gate: probe failure or a zero count aborts the cycle without touching the
// baseline, and the expensive fetch happens only on a positive probe.
func (w *Watcher) QuickCheck(ctx context.Context) error {
	probe, err := w.client.ProbeUpdate(ctx, w.baseline.Current())
	if err != nil {
		return fmt.Errorf("global update probe failed: %w", err)
	}

	if probe.UpdateNum == 0 {
		slog.Debug("No new activity since baseline", "baseline", w.baseline.Current())
		return nil
	}

	slog.Info("New activity detected", "count", probe.UpdateNum)

	page, err := w.client.FetchAllDynamics(ctx)
	if err != nil {
		return fmt.Errorf("global feed fetch failed: %w", err)
	}

	items := w.normalizeAll(page.Items)

	if page.UpdateBaseline != "" {
		w.baseline.Update(page.UpdateBaseline)
	} else {
		w.baseline.UpdateFromItems(items)
	}

	items = bili.FilterStale(items, w.maxAge, w.now())

	monitored := w.monitoredCreators(config.KindPost)
	delivered := 0
	for _, item := range items {
		if _, ok := monitored[item.AuthorID]; !ok {
			continue
		}
		sent, err := w.deliver(ctx, item)
		if err != nil {
			// Item stays unrecorded and is retried on the next cycle
			slog.Error("Delivery failed", "id", item.ID, "author", item.AuthorName, "error", err)
			continue
		}
		if sent {
			delivered++
		}
	}

	if delivered > 0 {
		slog.Info("Quick check delivered new items", "count", delivered)
	}

	return nil
}

// FullCheck is the fallback safety net: every enabled creator is checked
// independently of the global probe path, so a probe bug or a corrupted
// watermark cannot silently starve deliveries. Per-creator failures are
// contained and counted; one bad creator never aborts the batch.
func (w *Watcher) FullCheck(ctx context.Context) {
	if len(w.creators) == 0 {
		slog.Warn("No enabled creators, skipping full check")
		return
	}

	slog.Debug("Running fallback full check", "creators", len(w.creators))

	for _, creator := range w.creators {
		if w.failures[creator.UID] >= maxConsecutiveFailures {
			slog.Warn("Creator failing repeatedly, skipping this cycle",
				"creator", creator.Name, "failures", w.failures[creator.UID])
			w.failures[creator.UID] = 0
			continue
		}

		if err := w.checkCreator(ctx, creator); err != nil {
			w.failures[creator.UID]++
			slog.Error("Creator check failed",
				"creator", creator.Name,
				"consecutive_failures", w.failures[creator.UID],
				"error", err)
			continue
		}

		delete(w.failures, creator.UID)
	}
}

func (w *Watcher) checkCreator(ctx context.Context, creator config.Creator) error {
	var errs []error

	if creator.Monitors(config.KindPost) {
		if err := w.checkLatestPost(ctx, creator); err != nil {
			errs = append(errs, fmt.Errorf("post check: %w", err))
		}
	}

	if creator.Monitors(config.KindVideo) {
		if err := w.checkLatestVideo(ctx, creator); err != nil {
			errs = append(errs, fmt.Errorf("video check: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (w *Watcher) checkLatestPost(ctx context.Context, creator config.Creator) error {
	raw, err := w.client.FetchUserDynamics(ctx, creator.UID)
	if err != nil {
		return err
	}

	items := bili.FilterStale(w.normalizeAll(raw), w.maxAge, w.now())
	if len(items) == 0 {
		return nil
	}

	// Feed order is most-recent-first; the leading entry is the latest post
	_, err = w.deliver(ctx, items[0])
	return err
}

func (w *Watcher) checkLatestVideo(ctx context.Context, creator config.Creator) error {
	video, err := w.client.FetchLatestVideo(ctx, creator.UID)
	if err != nil {
		return err
	}
	if video == nil {
		return nil
	}

	_, err = w.deliver(ctx, bili.VideoItem(*video))
	return err
}

// deliver runs the dedup-gated delivery for one item. The record is written
// only after the notifier confirms, which keeps the store correct across a
// crash mid-delivery: unrecorded means undelivered as far as retries go.
func (w *Watcher) deliver(ctx context.Context, item bili.Item) (bool, error) {
	delivered, err := w.repo.IsDelivered(item.ID)
	if err != nil {
		return false, fmt.Errorf("dedup check failed for %s: %w", item.ID, err)
	}
	if delivered {
		slog.Debug("Item already delivered, skipping", "id", item.ID)
		return false, nil
	}

	if err := w.notifier.Deliver(ctx, item); err != nil {
		return false, fmt.Errorf("notifier failed for %s: %w", item.ID, err)
	}

	if err := w.repo.RecordDelivery(item); err != nil {
		// The notification went out; without the record the item may be sent
		// again next cycle. At-most-once per cycle still holds.
		return true, fmt.Errorf("delivered %s but failed to record it: %w", item.ID, err)
	}

	slog.Info("Delivered new item",
		"id", item.ID, "kind", item.Kind, "author", item.AuthorName)
	return true, nil
}

func (w *Watcher) normalizeAll(raw []bili.Dynamic) []bili.Item {
	items := make([]bili.Item, 0, len(raw))
	for _, entry := range raw {
		item, err := bili.Normalize(entry)
		if err != nil {
			// A single bad entry is skipped; its siblings still count
			slog.Warn("Skipping unparseable feed entry", "error", err)
			continue
		}
		items = append(items, item)
	}
	return items
}

func (w *Watcher) monitoredCreators(kind string) map[string]config.Creator {
	monitored := make(map[string]config.Creator, len(w.creators))
	for _, c := range w.creators {
		if c.Monitors(kind) {
			monitored[c.UID] = c
		}
	}
	return monitored
}

// LogStats writes the periodic statistics snapshot: store aggregates plus any
// creators currently accumulating failures.
func (w *Watcher) LogStats() {
	stats, err := w.repo.GetStats()
	if err != nil {
		slog.Error("Failed to read delivery stats", "error", err)
		return
	}

	attrs := []any{
		"total_deliveries", stats.TotalDeliveries,
		"today", stats.TodayDeliveries,
		"creators_seen", stats.CreatorCount,
		"watched", len(w.creators),
	}
	if stats.LatestRecordAt != nil {
		attrs = append(attrs, "latest_record_at", stats.LatestRecordAt.Format(time.DateTime))
	}
	slog.Info("Delivery statistics", attrs...)

	for uid, count := range w.failures {
		slog.Warn("Creator with consecutive failures", "uid", uid, "failures", count)
	}
}
