package database

import (
	"biliwatch/app/bili"
)

// DeliveryRepository is the durable dedup store. A record is written only
// after the outbound notification is confirmed sent; no other component may
// assume an item was delivered without consulting it.
type DeliveryRepository interface {
	IsDelivered(itemID string) (bool, error)
	RecordDelivery(item bili.Item) error
	GetRecentDeliveries(authorID string, limit int) ([]DeliveryRecord, error)
	PurgeOlderThan(days int) (int64, error)
	GetStats() (Stats, error)
}
