package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/quotagate/quotagate/domain/action"
	"github.com/quotagate/quotagate/domain/tier"
	"github.com/quotagate/quotagate/ports"
)

// AccountStore implements ports.AccountStore using SQLite.
type AccountStore struct {
	db *DB
}

// NewAccountStore creates a new SQLite account store.
func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

// Get retrieves an account by ID.
func (s *AccountStore) Get(ctx context.Context, id string) (ports.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, tier, monthly_uploads, monthly_audio_minutes,
		       monthly_contracts, usage_reset_date, created_at, updated_at
		FROM accounts
		WHERE id = ?
	`, id)
	return scanAccount(row)
}

// Create stores a new account.
func (s *AccountStore) Create(ctx context.Context, a ports.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, name, tier, monthly_uploads,
			monthly_audio_minutes, monthly_contracts, usage_reset_date,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Email, a.Name, string(a.Tier), a.MonthlyUploads,
		a.MonthlyAudioMinutes, a.MonthlyContracts, a.UsageResetDate,
		a.CreatedAt, a.UpdatedAt)

	if isUniqueConstraintError(err) {
		return ports.ErrDuplicate
	}
	return err
}

// Save persists counter and tier mutations on an existing account.
func (s *AccountStore) Save(ctx context.Context, a ports.Account) error {
	a.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET email = ?, name = ?, tier = ?, monthly_uploads = ?,
		    monthly_audio_minutes = ?, monthly_contracts = ?,
		    usage_reset_date = ?, updated_at = ?
		WHERE id = ?
	`, a.Email, a.Name, string(a.Tier), a.MonthlyUploads,
		a.MonthlyAudioMinutes, a.MonthlyContracts, a.UsageResetDate,
		a.UpdatedAt, a.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ports.ErrDuplicate
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// Delete removes an account.
func (s *AccountStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns accounts with pagination, oldest first.
func (s *AccountStore) List(ctx context.Context, limit, offset int) ([]ports.Account, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, name, tier, monthly_uploads, monthly_audio_minutes,
		       monthly_contracts, usage_reset_date, created_at, updated_at
		FROM accounts
		ORDER BY created_at, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []ports.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// counterColumn maps a counted kind to its column. Only the three fixed
// names below ever reach the SQL text.
func counterColumn(kind action.Kind) (string, bool) {
	switch kind {
	case action.Upload:
		return "monthly_uploads", true
	case action.Audio:
		return "monthly_audio_minutes", true
	case action.Contract:
		return "monthly_contracts", true
	}
	return "", false
}

// Consume atomically applies increment-with-ceiling in a single UPDATE.
// The WHERE clause repeats the pre-increment check so two concurrent
// callers cannot both pass it; SQLite serializes the writes.
func (s *AccountStore) Consume(ctx context.Context, id string, kind action.Kind, amount float64, ceiling float64) (ports.Account, error) {
	col, ok := counterColumn(kind)
	if !ok {
		// No counter behind this kind; return current state untouched.
		return s.Get(ctx, id)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET `+col+` = `+col+` + ?, updated_at = ?
		WHERE id = ? AND (? < 0 OR `+col+` < ?)
	`, amount, time.Now().UTC(), id, ceiling, ceiling)
	if err != nil {
		return ports.Account{}, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ports.Account{}, err
	}
	if rows > 0 {
		return s.Get(ctx, id)
	}

	// No row updated: either the account is missing or the counter is
	// at the ceiling. Distinguish with a read.
	a, err := s.Get(ctx, id)
	if err != nil {
		return ports.Account{}, err
	}
	return a, ports.ErrLimitExceeded
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (ports.Account, error) {
	var a ports.Account
	var tierName string
	err := row.Scan(&a.ID, &a.Email, &a.Name, &tierName, &a.MonthlyUploads,
		&a.MonthlyAudioMinutes, &a.MonthlyContracts, &a.UsageResetDate,
		&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.Account{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.Account{}, err
	}
	// Tier is stored as text; unknown values survive the round trip and
	// resolve to FREE limits at catalog lookup.
	a.Tier = tier.Tier(tierName)
	return a, nil
}

// Ensure interface compliance.
var _ ports.AccountStore = (*AccountStore)(nil)
