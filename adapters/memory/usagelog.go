package memory

import (
	"context"
	"sync"

	"github.com/quotagate/quotagate/ports"
)

// UsageLog is a mutex-guarded in-memory ports.UsageLog.
type UsageLog struct {
	mu     sync.RWMutex
	events map[string][]ports.UsageEvent // accountID -> events, oldest first
}

// NewUsageLog creates an empty in-memory usage log.
func NewUsageLog() *UsageLog {
	return &UsageLog{events: make(map[string][]ports.UsageEvent)}
}

// Append stores a usage event.
func (l *UsageLog) Append(ctx context.Context, e ports.UsageEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[e.AccountID] = append(l.events[e.AccountID], e)
	return nil
}

// Recent returns the newest events for an account, newest first.
func (l *UsageLog) Recent(ctx context.Context, accountID string, limit int) ([]ports.UsageEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	events := l.events[accountID]
	if limit <= 0 || limit > len(events) {
		limit = len(events)
	}

	out := make([]ports.UsageEvent, 0, limit)
	for i := len(events) - 1; i >= len(events)-limit; i-- {
		out = append(out, events[i])
	}
	return out, nil
}

// Ensure interface compliance.
var _ ports.UsageLog = (*UsageLog)(nil)
