package database

import (
	"database/sql"
	"fmt"
	"time"

	"biliwatch/app/bili"
)

// Stored content is a snippet for reporting, not a full copy of the item.
const contentSnippetLen = 200

const recordedAtLayout = "2006-01-02 15:04:05"

var _ DeliveryRepository = (*DeliveryRepo)(nil)

// DeliveryRepo handles database operations for delivery records
type DeliveryRepo struct {
	db *DB
}

// NewDeliveryRepo creates a new delivery repository
func NewDeliveryRepo(db *DB) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

// IsDelivered checks whether an item has already been delivered
func (r *DeliveryRepo) IsDelivered(itemID string) (bool, error) {
	var one int
	err := r.db.QueryRow("SELECT 1 FROM sent_items WHERE item_id = ? LIMIT 1", itemID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check delivery state: %w", err)
	}
	return true, nil
}

// RecordDelivery inserts a delivery record. Recording the same item twice is
// not an error; the first row wins and the uniqueness constraint on item_id
// keeps the operation safe under racing writers.
func (r *DeliveryRepo) RecordDelivery(item bili.Item) error {
	var publishedAt interface{}
	if item.PublishedAt != nil {
		publishedAt = item.PublishedAt.Unix()
	}

	_, err := r.db.Exec(`
		INSERT INTO sent_items (item_id, author_id, author_name, content, published_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(item_id) DO NOTHING
	`, item.ID, item.AuthorID, item.AuthorName, snippet(item.Content), publishedAt)

	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	return nil
}

// GetRecentDeliveries returns delivery records ordered by recording time
// descending, optionally scoped to one creator.
func (r *DeliveryRepo) GetRecentDeliveries(authorID string, limit int) ([]DeliveryRecord, error) {
	query := `
		SELECT id, item_id, author_id, author_name, COALESCE(content, ''),
		       published_at, recorded_at
		FROM sent_items`
	args := []interface{}{}

	if authorID != "" {
		query += " WHERE author_id = ?"
		args = append(args, authorID)
	}

	query += " ORDER BY recorded_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent deliveries: %w", err)
	}
	defer rows.Close()

	var records []DeliveryRecord
	for rows.Next() {
		var record DeliveryRecord
		var publishedAt sql.NullInt64
		var recordedAt string

		err := rows.Scan(&record.ID, &record.ItemID, &record.AuthorID,
			&record.AuthorName, &record.Content, &publishedAt, &recordedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery row: %w", err)
		}

		if publishedAt.Valid {
			t := time.Unix(publishedAt.Int64, 0)
			record.PublishedAt = &t
		}
		if t, err := time.Parse(recordedAtLayout, recordedAt); err == nil {
			record.RecordedAt = t
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery rows: %w", err)
	}

	return records, nil
}

// PurgeOlderThan removes records outside the retention window and returns the
// number of rows deleted.
func (r *DeliveryRepo) PurgeOlderThan(days int) (int64, error) {
	result, err := r.db.Exec(
		"DELETE FROM sent_items WHERE recorded_at < datetime('now', ?)",
		fmt.Sprintf("-%d days", days))
	if err != nil {
		return 0, fmt.Errorf("failed to purge old records: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged records: %w", err)
	}

	return removed, nil
}

// GetStats returns aggregate delivery statistics
func (r *DeliveryRepo) GetStats() (Stats, error) {
	var stats Stats
	var latest sql.NullString

	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       SUM(CASE WHEN DATE(recorded_at) = DATE('now') THEN 1 ELSE 0 END),
		       COUNT(DISTINCT author_id),
		       MAX(recorded_at)
		FROM sent_items
	`).Scan(&stats.TotalDeliveries, &nullableInt{&stats.TodayDeliveries}, &stats.CreatorCount, &latest)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to get delivery stats: %w", err)
	}

	if latest.Valid {
		if t, err := time.Parse(recordedAtLayout, latest.String); err == nil {
			stats.LatestRecordAt = &t
		}
	}

	return stats, nil
}

// nullableInt scans a SUM() that is NULL on an empty table as zero.
type nullableInt struct {
	dest *int
}

func (n *nullableInt) Scan(value interface{}) error {
	if value == nil {
		*n.dest = 0
		return nil
	}
	switch v := value.(type) {
	case int64:
		*n.dest = int(v)
	case float64:
		*n.dest = int(v)
	default:
		return fmt.Errorf("unexpected type %T for count", value)
	}
	return nil
}

func snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= contentSnippetLen {
		return content
	}
	return string(runes[:contentSnippetLen]) + "..."
}
