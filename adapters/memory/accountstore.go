// Package memory provides in-memory implementations of storage ports.
// Used by tests and by dev mode (`database.driver: memory`).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/quotagate/quotagate/domain/action"
	"github.com/quotagate/quotagate/ports"
)

// AccountStore is a mutex-guarded in-memory ports.AccountStore.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]ports.Account
	emails   map[string]string // email -> account ID, mirrors the sqlite UNIQUE constraint
}

// NewAccountStore creates an empty in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]ports.Account),
		emails:   make(map[string]string),
	}
}

// Get retrieves an account by ID.
func (s *AccountStore) Get(ctx context.Context, id string) (ports.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return ports.Account{}, ports.ErrNotFound
	}
	return a, nil
}

// Create stores a new account.
func (s *AccountStore) Create(ctx context.Context, a ports.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.ID]; ok {
		return ports.ErrDuplicate
	}
	if _, ok := s.emails[a.Email]; ok {
		return ports.ErrDuplicate
	}
	s.accounts[a.ID] = a
	s.emails[a.Email] = a.ID
	return nil
}

// Save persists mutations on an existing account.
func (s *AccountStore) Save(ctx context.Context, a ports.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.accounts[a.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if a.Email != prev.Email {
		if _, taken := s.emails[a.Email]; taken {
			return ports.ErrDuplicate
		}
		delete(s.emails, prev.Email)
		s.emails[a.Email] = a.ID
	}
	s.accounts[a.ID] = a
	return nil
}

// Delete removes an account.
func (s *AccountStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return ports.ErrNotFound
	}
	delete(s.emails, a.Email)
	delete(s.accounts, id)
	return nil
}

// List returns accounts ordered by creation time, then ID.
func (s *AccountStore) List(ctx context.Context, limit, offset int) ([]ports.Account, error) {
	s.mu.RLock()
	all := make([]ports.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		all = append(all, a)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Consume atomically applies increment-with-ceiling under the store lock.
// The pre-increment semantics match the soft path: the check is against
// the counter as it stands, not against counter+amount.
func (s *AccountStore) Consume(ctx context.Context, id string, kind action.Kind, amount float64, ceiling float64) (ports.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return ports.Account{}, ports.ErrNotFound
	}

	var current float64
	switch kind {
	case action.Upload:
		current = float64(a.MonthlyUploads)
	case action.Audio:
		current = a.MonthlyAudioMinutes
	case action.Contract:
		current = float64(a.MonthlyContracts)
	default:
		// Nothing to count; extension and unknown kinds pass through.
		return a, nil
	}

	if ceiling >= 0 && current >= ceiling {
		return a, ports.ErrLimitExceeded
	}

	switch kind {
	case action.Upload:
		a.MonthlyUploads += int64(amount)
	case action.Audio:
		a.MonthlyAudioMinutes += amount
	case action.Contract:
		a.MonthlyContracts += int64(amount)
	}

	s.accounts[id] = a
	return a, nil
}

// Len returns the number of stored accounts (for testing).
func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// Ensure interface compliance.
var _ ports.AccountStore = (*AccountStore)(nil)
