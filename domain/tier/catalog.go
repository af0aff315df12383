package tier

// Catalog maps tiers to their limits (immutable value type).
// Build one with NewCatalog and treat it as read-only; hot reload swaps
// whole catalogs rather than mutating entries.
type Catalog struct {
	limits map[Tier]Limits
}

// DefaultCatalog returns the built-in tier table.
func DefaultCatalog() Catalog {
	return NewCatalog(map[Tier]Limits{
		Free: {
			UploadsPerMonth:      5,
			AudioMinutesPerMonth: 10,
			ContractsPerMonth:    3,
		},
		Basic: {
			UploadsPerMonth:      20,
			AudioMinutesPerMonth: 120,
			ContractsPerMonth:    10,
			CanUseExtension:      true,
		},
		Premium: {
			UploadsPerMonth:      50,
			AudioMinutesPerMonth: 300,
			ContractsPerMonth:    Unlimited,
			CanUseExtension:      true,
			PriorityProcessing:   true,
		},
		Ultra: {
			UploadsPerMonth:      Unlimited,
			AudioMinutesPerMonth: Unlimited,
			ContractsPerMonth:    Unlimited,
			CanUseExtension:      true,
			PriorityProcessing:   true,
		},
	})
}

// NewCatalog builds a catalog from a tier->limits table.
// Missing tiers fall back to the FREE entry at lookup time.
func NewCatalog(limits map[Tier]Limits) Catalog {
	m := make(map[Tier]Limits, len(limits))
	for t, l := range limits {
		m[t] = l
	}
	return Catalog{limits: m}
}

// Limits returns the limits for a tier.
// Unknown or missing tiers resolve to the FREE limits: a corrupted or
// legacy account record must not escalate by accident, and must not be
// able to crash the request path.
func (c Catalog) Limits(t Tier) Limits {
	if l, ok := c.limits[t]; ok {
		return l
	}
	return c.limits[Free]
}

// Validate checks the monotonicity invariant: every numeric limit is
// non-decreasing as tier rank increases, and feature flags never regress.
// Unlimited (-1) counts as larger than any finite value.
func (c Catalog) Validate() error {
	tiers := All()
	for i := 1; i < len(tiers); i++ {
		lo := c.Limits(tiers[i-1])
		hi := c.Limits(tiers[i])

		if lessInt64(hi.UploadsPerMonth, lo.UploadsPerMonth) {
			return &MonotonicityError{Field: "uploads_per_month", Lower: tiers[i-1], Higher: tiers[i]}
		}
		if lessFloat(hi.AudioMinutesPerMonth, lo.AudioMinutesPerMonth) {
			return &MonotonicityError{Field: "audio_minutes_per_month", Lower: tiers[i-1], Higher: tiers[i]}
		}
		if lessInt64(hi.ContractsPerMonth, lo.ContractsPerMonth) {
			return &MonotonicityError{Field: "contracts_per_month", Lower: tiers[i-1], Higher: tiers[i]}
		}
		if lo.CanUseExtension && !hi.CanUseExtension {
			return &MonotonicityError{Field: "can_use_extension", Lower: tiers[i-1], Higher: tiers[i]}
		}
		if lo.PriorityProcessing && !hi.PriorityProcessing {
			return &MonotonicityError{Field: "priority_processing", Lower: tiers[i-1], Higher: tiers[i]}
		}
	}
	return nil
}

// MonotonicityError reports a tier table where a higher tier grants less
// than a lower one.
type MonotonicityError struct {
	Field  string
	Lower  Tier
	Higher Tier
}

func (e *MonotonicityError) Error() string {
	return "tier catalog: " + e.Field + " regresses from " + string(e.Lower) + " to " + string(e.Higher)
}

// lessInt64 compares limits treating Unlimited as +infinity.
func lessInt64(a, b int64) bool {
	if a == Unlimited {
		return false
	}
	if b == Unlimited {
		return true
	}
	return a < b
}

func lessFloat(a, b float64) bool {
	if a == Unlimited {
		return false
	}
	if b == Unlimited {
		return true
	}
	return a < b
}
