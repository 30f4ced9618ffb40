package bili

import (
	"log/slog"
	"time"
)

// FilterStale drops items whose publish time is older than maxAge relative to
// now. The upstream feed interleaves permanently pinned entries with the
// chronological feed and exposes no pin flag, so age is the only available
// signal; this is a lossy heuristic, not pin detection. Items with an unknown
// publish time are kept.
func FilterStale(items []Item, maxAge time.Duration, now time.Time) []Item {
	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if item.PublishedAt != nil && now.Sub(*item.PublishedAt) > maxAge {
			slog.Debug("Skipping stale entry, likely pinned",
				"id", item.ID, "published_at", item.PublishedAt)
			continue
		}
		kept = append(kept, item)
	}
	return kept
}
