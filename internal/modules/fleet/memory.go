// README: In-memory fleet repository for tests and the demo binaries.
package fleet

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu       sync.Mutex
	vehicles []Vehicle
	saves    int
}

func NewMemoryStore(initial ...Vehicle) *MemoryStore {
	return &MemoryStore{vehicles: append([]Vehicle(nil), initial...)}
}

func (m *MemoryStore) Load(_ context.Context) ([]Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Vehicle(nil), m.vehicles...), nil
}

func (m *MemoryStore) Save(_ context.Context, vehicles []Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles = append([]Vehicle(nil), vehicles...)
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
