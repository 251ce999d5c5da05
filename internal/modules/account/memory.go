// README: In-memory account repository for tests and the demo binaries.
package account

import (
	"context"
	"sync"

	"citycab/internal/types"
)

type MemoryStore struct {
	mu       sync.Mutex
	accounts map[types.ID]Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[types.ID]Account)}
}

func (m *MemoryStore) Exists(_ context.Context, id types.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.accounts[id]
	return ok, nil
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *MemoryStore) Create(_ context.Context, a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[a.ID]; ok {
		return ErrDuplicate
	}
	cp := *a
	if cp.Balance.Currency == "" {
		cp.Balance.Currency = types.DefaultCurrency
	}
	m.accounts[a.ID] = cp
	return nil
}

func (m *MemoryStore) AdjustBalance(_ context.Context, id types.ID, delta int64) (types.Money, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return types.Money{}, ErrNotFound
	}
	if a.Balance.Amount+delta < 0 {
		return types.Money{}, ErrInsufficientFunds
	}
	a.Balance.Amount += delta
	m.accounts[id] = a
	return a.Balance, nil
}

func (m *MemoryStore) SetPaymentMethod(_ context.Context, id types.ID, method PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.PaymentMethod = method
	m.accounts[id] = a
	return nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts), nil
}
