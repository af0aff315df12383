// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/quotagate/quotagate/adapters/metrics"
	"github.com/quotagate/quotagate/domain/action"
	"github.com/quotagate/quotagate/domain/entitlement"
	"github.com/quotagate/quotagate/domain/tier"
	"github.com/quotagate/quotagate/ports"
)

// Engine is the entitlement engine: it decides whether billable actions
// are allowed, records consumption, and performs the monthly rollover.
// The engine itself is stateless between calls; all state lives in the
// account record behind ports.AccountStore.
type Engine struct {
	accounts ports.AccountStore
	usageLog ports.UsageLog
	clock    ports.Clock
	idGen    ports.IDGenerator
	logger   zerolog.Logger
	metrics  *metrics.Collector

	// Hot-reloadable configuration (tier catalog + enforcement mode).
	dynamicCfg atomic.Pointer[DynamicConfig]
}

// DynamicConfig contains hot-reloadable engine configuration.
type DynamicConfig struct {
	Catalog tier.Catalog
	// Strict collapses check+record on the consume path into the
	// store's atomic increment-with-ceiling, closing the
	// check-then-increment race at the cost of one extra read.
	Strict bool
}

// EngineDeps contains dependencies for the Engine.
type EngineDeps struct {
	Accounts ports.AccountStore
	UsageLog ports.UsageLog // optional; nil disables the audit log
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   zerolog.Logger
	Metrics  *metrics.Collector // optional
}

// EngineConfig contains initial configuration for the Engine.
type EngineConfig struct {
	Catalog tier.Catalog
	Strict  bool
}

// NewEngine creates a new entitlement engine.
func NewEngine(deps EngineDeps, cfg EngineConfig) *Engine {
	e := &Engine{
		accounts: deps.Accounts,
		usageLog: deps.UsageLog,
		clock:    deps.Clock,
		idGen:    deps.IDGen,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}
	e.UpdateConfig(cfg.Catalog, cfg.Strict)
	return e
}

// UpdateConfig swaps the tier catalog and enforcement mode.
// Thread-safe; called from the config hot-reload hook.
func (e *Engine) UpdateConfig(catalog tier.Catalog, strict bool) {
	e.dynamicCfg.Store(&DynamicConfig{Catalog: catalog, Strict: strict})
}

func (e *Engine) config() *DynamicConfig {
	return e.dynamicCfg.Load()
}

// Catalog returns the current tier catalog.
func (e *Engine) Catalog() tier.Catalog {
	return e.config().Catalog
}

// Strict reports whether strict enforcement is active.
func (e *Engine) Strict() bool {
	return e.config().Strict
}

// CanPerform decides whether the account may perform an action of the
// given kind. A missing account is a denial, not an error; store
// failures propagate so the gate can fail closed.
func (e *Engine) CanPerform(ctx context.Context, accountID string, kind action.Kind) (entitlement.Decision, error) {
	a, err := e.accounts.Get(ctx, accountID)
	if errors.Is(err, ports.ErrNotFound) {
		return entitlement.NotFound(), nil
	}
	if err != nil {
		return entitlement.Decision{}, err
	}

	if err := e.resetIfNeeded(ctx, &a); err != nil {
		return entitlement.Decision{}, err
	}

	limits := e.Catalog().Limits(a.Tier)
	d := entitlement.Check(a, limits, kind)
	e.observeDecision(kind, d)
	return d, nil
}

// RecordUsage commits consumption after an action has actually been
// performed. Unknown and extension kinds are a no-op: recording is
// best-effort bookkeeping, not a gate. Store failures propagate; a
// silently dropped increment corrupts the accounting invariant.
//
// The limit is deliberately not re-checked here. The caller already went
// through CanPerform, and calling at most once per completed unit of
// work is the caller's responsibility.
func (e *Engine) RecordUsage(ctx context.Context, accountID string, kind action.Kind, amount float64) error {
	a, err := e.accounts.Get(ctx, accountID)
	if err != nil {
		return err
	}

	if err := e.resetIfNeeded(ctx, &a); err != nil {
		return err
	}

	a, mutated := entitlement.Record(a, kind, amount)
	if !mutated {
		return nil
	}

	if err := e.accounts.Save(ctx, a); err != nil {
		return err
	}

	e.appendUsageEvent(ctx, accountID, kind, amount)
	if e.metrics != nil {
		e.metrics.UsageRecorded.WithLabelValues(string(kind)).Add(amount)
	}
	return nil
}

// Consume is the single-shot check-and-record path.
//
// In strict mode counted kinds go through the store's atomic
// increment-with-ceiling, so two concurrent calls cannot both slip under
// the limit. In soft mode it is CanPerform followed by RecordUsage,
// which preserves the original check-then-increment behavior including
// its race.
func (e *Engine) Consume(ctx context.Context, accountID string, kind action.Kind, amount float64) (entitlement.Decision, error) {
	if !e.Strict() || !action.Counted(kind) {
		d, err := e.CanPerform(ctx, accountID, kind)
		if err != nil || !d.Allowed {
			return d, err
		}
		if action.Counted(kind) {
			if err := e.RecordUsage(ctx, accountID, kind, amount); err != nil {
				return entitlement.Decision{}, err
			}
		}
		return d, nil
	}

	a, err := e.accounts.Get(ctx, accountID)
	if errors.Is(err, ports.ErrNotFound) {
		return entitlement.NotFound(), nil
	}
	if err != nil {
		return entitlement.Decision{}, err
	}

	if err := e.resetIfNeeded(ctx, &a); err != nil {
		return entitlement.Decision{}, err
	}

	limits := e.Catalog().Limits(a.Tier)
	a, err = e.accounts.Consume(ctx, accountID, kind, amount, ceilingFor(limits, kind))
	if errors.Is(err, ports.ErrLimitExceeded) {
		// The returned account is at or past the limit; Check renders
		// the same denial CanPerform would.
		d := entitlement.Check(a, limits, kind)
		e.observeDecision(kind, d)
		return d, nil
	}
	if err != nil {
		return entitlement.Decision{}, err
	}

	e.appendUsageEvent(ctx, accountID, kind, amount)
	if e.metrics != nil {
		e.metrics.UsageRecorded.WithLabelValues(string(kind)).Add(amount)
	}
	d := entitlement.Decision{Allowed: true}
	e.observeDecision(kind, d)
	return d, nil
}

// ceilingFor returns the pre-increment ceiling for a counted kind.
func ceilingFor(limits tier.Limits, kind action.Kind) float64 {
	switch kind {
	case action.Upload:
		return float64(limits.UploadsPerMonth)
	case action.Audio:
		return limits.AudioMinutesPerMonth
	case action.Contract:
		return float64(limits.ContractsPerMonth)
	}
	return tier.Unlimited
}

// UsageStats returns the read-only usage view for display. Runs the
// rollover first; otherwise never mutates.
func (e *Engine) UsageStats(ctx context.Context, accountID string) (entitlement.Stats, error) {
	a, err := e.accounts.Get(ctx, accountID)
	if err != nil {
		return entitlement.Stats{}, err
	}

	if err := e.resetIfNeeded(ctx, &a); err != nil {
		return entitlement.Stats{}, err
	}

	return entitlement.BuildStats(a, e.Catalog().Limits(a.Tier)), nil
}

// UpgradeRecommendation returns advisory upgrade guidance, or nil for
// top-tier accounts.
func (e *Engine) UpgradeRecommendation(ctx context.Context, accountID string) (*entitlement.Recommendation, error) {
	a, err := e.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := e.resetIfNeeded(ctx, &a); err != nil {
		return nil, err
	}

	return entitlement.Recommend(a, e.Catalog().Limits(a.Tier)), nil
}

// resetIfNeeded enforces the monthly-rollover invariant before any
// decision or mutation. Must complete before counters are read; a failed
// reset persist aborts the call rather than deciding on stale counters.
func (e *Engine) resetIfNeeded(ctx context.Context, a *ports.Account) error {
	now := e.clock.Now()
	if !entitlement.RolloverDue(a.UsageResetDate, now) {
		return nil
	}

	*a = entitlement.Rollover(*a, now)
	if err := e.accounts.Save(ctx, *a); err != nil {
		return err
	}

	if e.metrics != nil {
		e.metrics.RolloversTotal.Inc()
	}
	e.logger.Info().
		Str("account_id", a.ID).
		Time("reset_date", now).
		Msg("monthly usage counters reset")
	return nil
}

// appendUsageEvent writes the audit record. Best-effort: the counters
// are already committed, so a log failure must not fail the request.
func (e *Engine) appendUsageEvent(ctx context.Context, accountID string, kind action.Kind, amount float64) {
	if e.usageLog == nil {
		return
	}

	err := e.usageLog.Append(ctx, ports.UsageEvent{
		ID:         e.idGen.New(),
		AccountID:  accountID,
		Kind:       kind,
		Amount:     amount,
		RecordedAt: e.clock.Now(),
	})
	if err != nil {
		if e.metrics != nil {
			e.metrics.UsageLogErrors.Inc()
		}
		e.logger.Error().Err(err).
			Str("account_id", accountID).
			Str("kind", string(kind)).
			Msg("usage log append failed")
	}
}

func (e *Engine) observeDecision(kind action.Kind, d entitlement.Decision) {
	if e.metrics != nil {
		e.metrics.DecisionsTotal.WithLabelValues(string(kind), strconv.FormatBool(d.Allowed)).Inc()
		if !d.Allowed {
			e.metrics.DenialsTotal.WithLabelValues(string(kind), d.Reason).Inc()
		}
	}
	if !d.Allowed {
		e.logger.Debug().
			Str("kind", string(kind)).
			Str("reason", d.Reason).
			Float64("current", d.Current).
			Float64("limit", d.Limit).
			Msg("entitlement denied")
	}
}
