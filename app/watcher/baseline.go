package watcher

import (
	"biliwatch/app/bili"
)

// Baseline holds the opaque upstream watermark the cheap probe is asked
// against. One watermark covers all creators. It lives only in process
// memory: losing it falls back to probing from the beginning, which costs an
// extra fetch but never correctness.
type Baseline struct {
	token string
}

// Current returns the last-seen watermark, or "0" meaning "from the beginning".
func (b *Baseline) Current() string {
	if b.token == "" {
		return "0"
	}
	return b.token
}

// Update replaces the watermark with the latest upstream-issued token.
func (b *Baseline) Update(token string) {
	if token != "" {
		b.token = token
	}
}

// UpdateFromItems sets the watermark to the first (most recent) item's ID,
// used when a fetch response carries no watermark of its own.
func (b *Baseline) UpdateFromItems(items []bili.Item) {
	if len(items) > 0 {
		b.token = items[0].ID
	}
}
