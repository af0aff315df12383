// Package tier provides subscription tier value types and pure functions.
// Tiers determine monthly quota limits and feature flags.
package tier

// Tier identifies a subscription level.
type Tier string

const (
	Free    Tier = "FREE"
	Basic   Tier = "BASIC"
	Premium Tier = "PREMIUM"
	Ultra   Tier = "ULTRA"
)

// Unlimited marks a numeric limit as uncapped.
const Unlimited = -1

// Limits represents the quota limits and feature flags of a tier
// (immutable value type).
type Limits struct {
	UploadsPerMonth      int64   // -1 = unlimited
	AudioMinutesPerMonth float64 // -1 = unlimited
	ContractsPerMonth    int64   // -1 = unlimited
	CanUseExtension      bool
	PriorityProcessing   bool
}

// All returns every known tier in ascending rank order.
// This is a PURE function.
func All() []Tier {
	return []Tier{Free, Basic, Premium, Ultra}
}

// Parse validates a tier name. Returns false for unknown values so the
// caller can decide how to handle them at the deserialization boundary.
// This is a PURE function.
func Parse(s string) (Tier, bool) {
	switch Tier(s) {
	case Free, Basic, Premium, Ultra:
		return Tier(s), true
	}
	return "", false
}

// Rank returns the position of a tier in the upgrade ladder.
// Unknown tiers rank as Free.
// This is a PURE function.
func Rank(t Tier) int {
	switch t {
	case Basic:
		return 1
	case Premium:
		return 2
	case Ultra:
		return 3
	default:
		return 0
	}
}

// Next returns the tier recommended as an upgrade target.
// FREE upgrades to BASIC; everything else upgrades to ULTRA.
// Returns false for ULTRA since there is nothing above it.
// This is a PURE function.
func Next(t Tier) (Tier, bool) {
	switch t {
	case Ultra:
		return "", false
	case Free:
		return Basic, true
	default:
		return Ultra, true
	}
}

// IsTop reports whether a tier is the highest available.
// This is a PURE function.
func IsTop(t Tier) bool {
	return t == Ultra
}
