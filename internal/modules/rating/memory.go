// README: In-memory rating aggregates for tests and the demo binaries.
package rating

import (
	"context"
	"sync"

	"citycab/internal/types"
)

type MemoryStore struct {
	mu   sync.Mutex
	aggs map[types.ID]Summary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{aggs: make(map[types.ID]Summary)}
}

func (m *MemoryStore) AddRating(_ context.Context, vehicleID types.ID, stars int) error {
	if !Valid(stars) {
		return ErrInvalidRating
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.aggs[vehicleID]
	s.Sum += int64(stars)
	s.Count++
	m.aggs[vehicleID] = s
	return nil
}

func (m *MemoryStore) Summary(_ context.Context, vehicleID types.ID) (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aggs[vehicleID], nil
}

func (m *MemoryStore) AverageRating(ctx context.Context, vehicleID types.ID) (float64, error) {
	s, _ := m.Summary(ctx, vehicleID)
	return s.Average(), nil
}
