package storage

import "sync"

// MemoryStore keeps delivery state in memory only. It is the degraded mode
// when a persistent backend is unreachable: everything looks un-notified,
// so a duplicate send is possible but nothing is skipped.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]DeliveryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]DeliveryRecord)}
}

func (ms *MemoryStore) IsNotified(id string) bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	_, ok := ms.items[id]
	return ok
}

func (ms *MemoryStore) MarkNotified(rec DeliveryRecord) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.items[rec.ID] = rec
	return nil
}

func (ms *MemoryStore) Close() error { return nil }
