// Package storage persists delivery state: the set of article ids that have
// already triggered a successful notification. The pipeline only consumes the
// narrow Store interface, so the backing technology (JSON file, Postgres,
// Redis) is an operational choice.
package storage

import "time"

// DeliveryRecord is one notified article identity. Records are only written
// after at least one notification channel reported success.
type DeliveryRecord struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	Category   string    `json:"category"`
	Source     string    `json:"source"`
	NotifiedAt time.Time `json:"notified_at"`
}

// Store is the delivery-state key set. IsNotified is a pure read;
// MarkNotified is one-way — there is no un-notify. Close flushes whatever
// the backend buffers.
type Store interface {
	IsNotified(id string) bool
	MarkNotified(rec DeliveryRecord) error
	Close() error
}
