// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/quotagate/quotagate/domain/action"
	"github.com/quotagate/quotagate/domain/tier"
)

// ErrNotFound is returned when an entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint is violated.
var ErrDuplicate = errors.New("already exists")

// ErrLimitExceeded is returned by Consume when the atomic
// increment-with-ceiling would push a counter past its limit.
var ErrLimitExceeded = errors.New("limit exceeded")

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher provides secret hashing for service-key authentication.
type Hasher interface {
	// Hash generates a hash from a plaintext value.
	Hash(plaintext string) ([]byte, error)

	// Compare checks if plaintext matches hash.
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// Account holds a billing account's tier and running monthly counters.
// Counters are mutated only through the entitlement engine.
type Account struct {
	ID                  string
	Email               string
	Name                string
	Tier                tier.Tier
	MonthlyUploads      int64
	MonthlyAudioMinutes float64
	MonthlyContracts    int64
	UsageResetDate      time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// AccountStore persists billing accounts.
type AccountStore interface {
	// Get retrieves an account by ID.
	Get(ctx context.Context, id string) (Account, error)

	// Create stores a new account.
	Create(ctx context.Context, a Account) error

	// Save persists counter and tier mutations on an existing account.
	Save(ctx context.Context, a Account) error

	// Delete removes an account.
	Delete(ctx context.Context, id string) error

	// List returns accounts with pagination.
	List(ctx context.Context, limit, offset int) ([]Account, error)

	// Consume atomically adds amount to the counter for kind, but only
	// if the counter is currently below ceiling (pre-increment check;
	// ceiling < 0 means unlimited). Returns the updated account, or
	// ErrLimitExceeded without mutating when the counter is at or past
	// the ceiling. Used by strict enforcement to close the
	// check-then-increment race.
	Consume(ctx context.Context, id string, kind action.Kind, amount float64, ceiling float64) (Account, error)
}

// UsageEvent is an audit record of a single recorded consumption.
type UsageEvent struct {
	ID         string
	AccountID  string
	Kind       action.Kind
	Amount     float64
	RecordedAt time.Time
}

// UsageLog persists usage events for export and audit.
type UsageLog interface {
	// Append stores a usage event.
	Append(ctx context.Context, e UsageEvent) error

	// Recent returns the newest events for an account, newest first.
	Recent(ctx context.Context, accountID string, limit int) ([]UsageEvent, error)
}
