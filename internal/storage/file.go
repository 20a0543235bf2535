package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sunghyun2815/music-news-automation/internal/logger"
)

// FileStore keeps delivery state in a JSON file. A missing or corrupt file
// degrades to "nothing previously notified": re-sending a duplicate is the
// safer failure than silently losing articles.
type FileStore struct {
	filePath string
	ttl      time.Duration
	items    map[string]DeliveryRecord
	mu       sync.RWMutex
}

func NewFileStore(filePath string, ttl time.Duration) *FileStore {
	return &FileStore{
		filePath: filePath,
		ttl:      ttl,
		items:    make(map[string]DeliveryRecord),
	}
}

// Load reads existing state. Expired records are dropped on the way in.
func (fs *FileStore) Load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		logger.Warn("delivery state unreadable, starting empty", "path", fs.filePath, "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var records []DeliveryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("delivery state corrupt, starting empty", "path", fs.filePath, "error", err)
		return nil
	}

	cutoff := time.Now().Add(-fs.ttl)
	for _, rec := range records {
		if fs.ttl <= 0 || rec.NotifiedAt.After(cutoff) {
			fs.items[rec.ID] = rec
		}
	}
	return nil
}

// Save writes the current state back to disk.
func (fs *FileStore) Save() error {
	fs.mu.RLock()
	records := make([]DeliveryRecord, 0, len(fs.items))
	for _, rec := range fs.items {
		records = append(records, rec)
	}
	fs.mu.RUnlock()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal delivery state: %w", err)
	}
	if err := os.WriteFile(fs.filePath, data, 0644); err != nil {
		return fmt.Errorf("write delivery state: %w", err)
	}
	return nil
}

func (fs *FileStore) IsNotified(id string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	rec, ok := fs.items[id]
	if !ok {
		return false
	}
	if fs.ttl > 0 && rec.NotifiedAt.Before(time.Now().Add(-fs.ttl)) {
		return false
	}
	return true
}

func (fs *FileStore) MarkNotified(rec DeliveryRecord) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if rec.NotifiedAt.IsZero() {
		rec.NotifiedAt = time.Now()
	}
	fs.items[rec.ID] = rec
	return nil
}

// Close flushes the state to disk.
func (fs *FileStore) Close() error {
	return fs.Save()
}
