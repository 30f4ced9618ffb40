package database

import (
	"time"
)

// DeliveryRecord is one durable row in the dedup store. Presence of a row is
// the sole authority for "already delivered"; rows are never mutated, only
// purged by retention cleanup.
type DeliveryRecord struct {
	ID          int64
	ItemID      string
	AuthorID    string
	AuthorName  string
	Content     string
	PublishedAt *time.Time
	RecordedAt  time.Time
}

// Stats is an aggregate view of the dedup store for logging and the API.
type Stats struct {
	TotalDeliveries int
	TodayDeliveries int
	CreatorCount    int
	LatestRecordAt  *time.Time
}
