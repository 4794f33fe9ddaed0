package state

import (
	"fmt"
	"sync"
	"testing"

	"github.com/auto-dns/docker-slim-exporter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, name string, labels map[string]string) domain.ContainerRecord {
	return domain.ContainerRecord{
		ID:           id,
		Name:         name,
		Status:       "running",
		HealthStatus: domain.HealthStatusNone,
		Labels:       labels,
	}
}

func TestSnapshotCache_InitiallyEmpty(t *testing.T) {
	c := NewSnapshotCache()

	assert.Empty(t, c.Read())
	assert.NotNil(t, c.Read())
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.UpdatedAt().IsZero())
}

func TestSnapshotCache_ReplaceAndRead(t *testing.T) {
	c := NewSnapshotCache()
	c.Replace([]domain.ContainerRecord{
		record("aaaaaaaaaaaa", "web", map[string]string{"container_label_env": "prod"}),
		record("bbbbbbbbbbbb", "db", map[string]string{}),
	})

	got := c.Read()
	require.Len(t, got, 2)
	assert.Equal(t, "web", got[0].Name)
	assert.Equal(t, "db", got[1].Name)
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.UpdatedAt().IsZero())

	c.Replace([]domain.ContainerRecord{record("cccccccccccc", "cache", nil)})
	got = c.Read()
	require.Len(t, got, 1)
	assert.Equal(t, "cache", got[0].Name)
}

func TestSnapshotCache_ReadIsDefensiveCopy(t *testing.T) {
	c := NewSnapshotCache()
	c.Replace([]domain.ContainerRecord{
		record("aaaaaaaaaaaa", "web", map[string]string{"container_label_env": "prod"}),
	})

	got := c.Read()
	got[0].Name = "mutated"
	got[0].Labels["container_label_env"] = "mutated"

	again := c.Read()
	assert.Equal(t, "web", again[0].Name)
	assert.Equal(t, "prod", again[0].Labels["container_label_env"])
}

func TestSnapshotCache_ReplaceCopiesInput(t *testing.T) {
	c := NewSnapshotCache()
	in := []domain.ContainerRecord{
		record("aaaaaaaaaaaa", "web", map[string]string{"container_label_env": "prod"}),
	}
	c.Replace(in)

	in[0].Name = "mutated"
	in[0].Labels["container_label_env"] = "mutated"

	got := c.Read()
	assert.Equal(t, "web", got[0].Name)
	assert.Equal(t, "prod", got[0].Labels["container_label_env"])
}

func TestSnapshotCache_ConcurrentReplaceAndRead(t *testing.T) {
	c := NewSnapshotCache()

	const passes = 200
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < passes; i++ {
			size := i%5 + 1
			snapshot := make([]domain.ContainerRecord, size)
			for j := range snapshot {
				// every record of one pass carries the pass number
				snapshot[j] = record(fmt.Sprintf("%012d", j), fmt.Sprintf("pass-%d", i), nil)
			}
			c.Replace(snapshot)
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < passes; i++ {
				got := c.Read()
				if len(got) == 0 {
					continue
				}
				for _, rec := range got {
					assert.Equal(t, got[0].Name, rec.Name, "snapshot mixes records from two passes")
				}
			}
		}()
	}

	wg.Wait()
}
