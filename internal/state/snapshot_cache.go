package state

import (
	"sync"
	"time"

	"github.com/auto-dns/docker-slim-exporter/internal/domain"
)

// SnapshotCache holds the records produced by the most recent successful
// collection pass.
type SnapshotCache struct {
	mu        sync.RWMutex
	records   []domain.ContainerRecord
	updatedAt time.Time
}

// NewSnapshotCache creates an empty cache.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{
		records: []domain.ContainerRecord{},
	}
}

// Replace swaps the stored snapshot for records. The cache keeps its own copy.
func (c *SnapshotCache) Replace(records []domain.ContainerRecord) {
	snapshot := cloneRecords(records)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = snapshot
	c.updatedAt = now
}

// Read returns a deep copy of the current snapshot.
func (c *SnapshotCache) Read() []domain.ContainerRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneRecords(c.records)
}

// Len returns the number of records in the current snapshot.
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// UpdatedAt returns when the snapshot was last replaced, or the zero time.
func (c *SnapshotCache) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

func cloneRecords(records []domain.ContainerRecord) []domain.ContainerRecord {
	out := make([]domain.ContainerRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
