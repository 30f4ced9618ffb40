package bili

import (
	"testing"
	"time"
)

func itemPublishedAt(id string, t time.Time) Item {
	return Item{ID: id, PublishedAt: &t}
}

func TestFilterStale(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	maxAge := 30 * 24 * time.Hour

	items := []Item{
		itemPublishedAt("old", now.AddDate(0, 0, -31)),
		itemPublishedAt("recent", now.AddDate(0, 0, -29)),
		{ID: "unknown"}, // no publish time, not filterable
		itemPublishedAt("fresh", now.Add(-time.Hour)),
	}

	kept := FilterStale(items, maxAge, now)

	if len(kept) != 3 {
		t.Fatalf("Expected 3 items kept, got %d", len(kept))
	}

	want := []string{"recent", "unknown", "fresh"}
	for i, id := range want {
		if kept[i].ID != id {
			t.Errorf("Position %d: expected '%s', got '%s'", i, id, kept[i].ID)
		}
	}
}

func TestFilterStaleEmpty(t *testing.T) {
	kept := FilterStale(nil, 30*24*time.Hour, time.Now())
	if len(kept) != 0 {
		t.Errorf("Expected no items, got %d", len(kept))
	}
}

func TestFilterStaleBoundary(t *testing.T) {
	now := time.Now()
	maxAge := 30 * 24 * time.Hour

	// Exactly at the boundary is not older than the window
	exact := itemPublishedAt("exact", now.Add(-maxAge))
	kept := FilterStale([]Item{exact}, maxAge, now)
	if len(kept) != 1 {
		t.Error("Item exactly at the age boundary should be kept")
	}

	over := itemPublishedAt("over", now.Add(-maxAge-time.Second))
	kept = FilterStale([]Item{over}, maxAge, now)
	if len(kept) != 0 {
		t.Error("Item one second past the age boundary should be dropped")
	}
}
