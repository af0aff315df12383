package sqlite

import (
	"context"

	"github.com/quotagate/quotagate/domain/action"
	"github.com/quotagate/quotagate/ports"
)

// UsageLog implements ports.UsageLog using SQLite.
type UsageLog struct {
	db *DB
}

// NewUsageLog creates a new SQLite usage log.
func NewUsageLog(db *DB) *UsageLog {
	return &UsageLog{db: db}
}

// Append stores a usage event.
func (l *UsageLog) Append(ctx context.Context, e ports.UsageEvent) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO usage_events (id, account_id, kind, amount, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.AccountID, string(e.Kind), e.Amount, e.RecordedAt)
	return err
}

// Recent returns the newest events for an account, newest first.
func (l *UsageLog) Recent(ctx context.Context, accountID string, limit int) ([]ports.UsageEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, account_id, kind, amount, recorded_at
		FROM usage_events
		WHERE account_id = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ports.UsageEvent
	for rows.Next() {
		var e ports.UsageEvent
		var kind string
		if err := rows.Scan(&e.ID, &e.AccountID, &kind, &e.Amount, &e.RecordedAt); err != nil {
			return nil, err
		}
		e.Kind = action.Kind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Ensure interface compliance.
var _ ports.UsageLog = (*UsageLog)(nil)
