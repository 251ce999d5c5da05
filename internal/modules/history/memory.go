// README: In-memory ride history for tests and the demo binaries.
package history

import (
	"context"
	"sync"

	"citycab/internal/types"
)

type MemoryStore struct {
	mu      sync.Mutex
	records []Record
	byID    map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

func (m *MemoryStore) Append(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[r.BookingID]; ok {
		return ErrDuplicate
	}
	m.byID[r.BookingID] = len(m.records)
	m.records = append(m.records, r)
	return nil
}

func (m *MemoryStore) Find(_ context.Context, bookingID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.byID[bookingID]
	if !ok {
		return nil, ErrNotFound
	}
	r := m.records[i]
	return &r, nil
}

func (m *MemoryStore) SetRating(_ context.Context, bookingID string, rating int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.byID[bookingID]
	if !ok {
		return ErrNotFound
	}
	if m.records[i].Rated() {
		return ErrAlreadyRated
	}
	m.records[i].Rating = rating
	return nil
}

func (m *MemoryStore) ListByRider(_ context.Context, riderID types.ID) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, r := range m.records {
		if r.RiderID == riderID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}
