package web

import (
	"context"

	"github.com/quotagate/quotagate/domain/entitlement"
)

type contextKey int

const (
	decisionKey contextKey = iota
	statsKey
)

func withDecision(ctx context.Context, d entitlement.Decision) context.Context {
	return context.WithValue(ctx, decisionKey, d)
}

// decisionFrom returns the gate decision stored by RequireQuota.
func decisionFrom(ctx context.Context) (entitlement.Decision, bool) {
	d, ok := ctx.Value(decisionKey).(entitlement.Decision)
	return d, ok
}

func withStats(ctx context.Context, s entitlement.Stats) context.Context {
	return context.WithValue(ctx, statsKey, s)
}

// statsFrom returns the usage stats stored by AttachUsageStats.
func statsFrom(ctx context.Context) (entitlement.Stats, bool) {
	s, ok := ctx.Value(statsKey).(entitlement.Stats)
	return s, ok
}
