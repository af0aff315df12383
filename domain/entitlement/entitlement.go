// Package entitlement provides pure functions for the usage-accounting
// engine: allow/deny decisions, monthly rollover, usage stats, and
// upgrade recommendations. All functions are deterministic with no side
// effects; persistence lives behind ports.AccountStore and orchestration
// in app.Engine.
package entitlement

import (
	"fmt"
	"time"

	"github.com/quotagate/quotagate/domain/action"
	"github.com/quotagate/quotagate/domain/tier"
	"github.com/quotagate/quotagate/ports"
)

// Deny reasons. The strings are part of the contract with the platform
// frontend and must stay stable.
const (
	ReasonUploadLimit     = "Monthly upload limit reached"
	ReasonAudioLimit      = "Monthly audio limit reached"
	ReasonContractLimit   = "Monthly contract limit reached"
	ReasonExtensionTier   = "Extension streaming requires BASIC or ULTRA subscription"
	ReasonUnknownAction   = "Unknown action"
	ReasonAccountNotFound = "Account not found"
)

// Decision represents the outcome of an entitlement check (value type).
// Current and Limit are only meaningful when a counter was involved.
type Decision struct {
	Allowed       bool
	Reason        string
	Current       float64
	Limit         float64
	UpgradePrompt bool
}

// Check decides whether an account may perform an action of the given
// kind right now. This is a PURE function.
//
// Counted kinds compare the counter as it stands against the limit: an
// action that starts with any budget left is allowed, even if it will
// consume more than what remains (the audio soft cap). Tightening this
// to "will the amount fit" would change billing behavior for every
// in-flight transcription, so the pre-increment check is kept.
func Check(a ports.Account, limits tier.Limits, kind action.Kind) Decision {
	prompt := !tier.IsTop(a.Tier)

	switch kind {
	case action.Upload:
		if reached(float64(a.MonthlyUploads), float64(limits.UploadsPerMonth)) {
			return Decision{
				Reason:        ReasonUploadLimit,
				Current:       float64(a.MonthlyUploads),
				Limit:         float64(limits.UploadsPerMonth),
				UpgradePrompt: prompt,
			}
		}

	case action.Audio:
		if reached(a.MonthlyAudioMinutes, limits.AudioMinutesPerMonth) {
			return Decision{
				Reason:        ReasonAudioLimit,
				Current:       a.MonthlyAudioMinutes,
				Limit:         limits.AudioMinutesPerMonth,
				UpgradePrompt: prompt,
			}
		}

	case action.Contract:
		if reached(float64(a.MonthlyContracts), float64(limits.ContractsPerMonth)) {
			return Decision{
				Reason:        ReasonContractLimit,
				Current:       float64(a.MonthlyContracts),
				Limit:         float64(limits.ContractsPerMonth),
				UpgradePrompt: prompt,
			}
		}

	case action.Extension:
		if !limits.CanUseExtension {
			return Decision{
				Reason:        ReasonExtensionTier,
				UpgradePrompt: true,
			}
		}

	default:
		// Fail closed: a kind the engine does not know is a
		// programmer error at the call site, not a grant.
		return Decision{Reason: ReasonUnknownAction}
	}

	return Decision{Allowed: true}
}

// NotFound is the decision for an account that does not exist. The gate
// must always be able to render a user-facing response, so a missing
// account is a denial with a reason, not an error.
// This is a PURE function.
func NotFound() Decision {
	return Decision{Reason: ReasonAccountNotFound}
}

// reached reports whether a counter has hit its limit.
// A negative limit means unlimited and is never reached.
func reached(current, limit float64) bool {
	if limit < 0 {
		return false
	}
	return current >= limit
}

// RolloverDue reports whether the monthly reset is pending. The
// comparison is on calendar month and year, not elapsed duration, so an
// account idle for several months still rolls over on its next call.
// This is a PURE function.
func RolloverDue(resetDate, now time.Time) bool {
	return resetDate.Month() != now.Month() || resetDate.Year() != now.Year()
}

// Rollover returns the account with all counters zeroed and the reset
// date advanced to now. Callers gate it with RolloverDue, which makes
// the pair idempotent within a calendar month.
// This is a PURE function.
func Rollover(a ports.Account, now time.Time) ports.Account {
	a.MonthlyUploads = 0
	a.MonthlyAudioMinutes = 0
	a.MonthlyContracts = 0
	a.UsageResetDate = now
	return a
}

// Record returns the account with amount added to the counter for kind.
// Extension has no counter and unknown kinds are best-effort bookkeeping,
// so both return the account unchanged with mutated=false.
// This is a PURE function.
func Record(a ports.Account, kind action.Kind, amount float64) (out ports.Account, mutated bool) {
	switch kind {
	case action.Upload:
		a.MonthlyUploads += int64(amount)
		return a, true
	case action.Audio:
		a.MonthlyAudioMinutes += amount
		return a, true
	case action.Contract:
		a.MonthlyContracts += int64(amount)
		return a, true
	}
	return a, false
}

// Stat is the display view of one tracked dimension.
type Stat struct {
	Used      float64
	Limit     float64
	Remaining float64
}

// Stats is the read-only usage view for an account.
type Stats struct {
	Tier               tier.Tier
	Uploads            Stat
	AudioMinutes       Stat
	Contracts          Stat
	CanUseExtension    bool
	PriorityProcessing bool
	ResetDate          time.Time
}

// BuildStats assembles the usage view from an account and its limits.
// This is a PURE function.
func BuildStats(a ports.Account, limits tier.Limits) Stats {
	return Stats{
		Tier:               a.Tier,
		Uploads:            stat(float64(a.MonthlyUploads), float64(limits.UploadsPerMonth)),
		AudioMinutes:       stat(a.MonthlyAudioMinutes, limits.AudioMinutesPerMonth),
		Contracts:          stat(float64(a.MonthlyContracts), float64(limits.ContractsPerMonth)),
		CanUseExtension:    limits.CanUseExtension,
		PriorityProcessing: limits.PriorityProcessing,
		ResetDate:          a.UsageResetDate,
	}
}

// stat computes remaining = max(0, limit-used); unlimited stays unlimited.
func stat(used, limit float64) Stat {
	s := Stat{Used: used, Limit: limit}
	if limit < 0 {
		s.Remaining = tier.Unlimited
		return s
	}
	if rem := limit - used; rem > 0 {
		s.Remaining = rem
	}
	return s
}

// Recommendation is advisory upgrade guidance based on current usage.
type Recommendation struct {
	RecommendUpgrade bool
	CurrentTier      tier.Tier
	RecommendedTier  tier.Tier
	Reasons          []string
}

// recommendThresholdPct is the usage percentage at which an upgrade is
// suggested.
const recommendThresholdPct = 80.0

// Recommend computes an upgrade recommendation for an account.
// Returns nil for top-tier accounts: there is nothing to upgrade to.
// This is a PURE function.
func Recommend(a ports.Account, limits tier.Limits) *Recommendation {
	next, ok := tier.Next(a.Tier)
	if !ok {
		return nil
	}

	dims := []struct {
		name  string
		used  float64
		limit float64
	}{
		{"uploads", float64(a.MonthlyUploads), float64(limits.UploadsPerMonth)},
		{"audio", a.MonthlyAudioMinutes, limits.AudioMinutesPerMonth},
		{"contracts", float64(a.MonthlyContracts), float64(limits.ContractsPerMonth)},
	}

	var reasons []string
	for _, d := range dims {
		if pct := UsagePercent(d.used, d.limit); pct >= recommendThresholdPct {
			reasons = append(reasons, fmt.Sprintf("%s usage at %.0f%%", d.name, pct))
		}
	}

	if len(reasons) == 0 {
		return &Recommendation{CurrentTier: a.Tier}
	}

	return &Recommendation{
		RecommendUpgrade: true,
		CurrentTier:      a.Tier,
		RecommendedTier:  next,
		Reasons:          reasons,
	}
}

// UsagePercent returns used/limit as a percentage. An unlimited limit is
// always 0%: you cannot crowd an uncapped dimension.
// This is a PURE function.
func UsagePercent(used, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return used / limit * 100
}
