package tier

import (
	"errors"
	"testing"
)

// -----------------------------------------------------------------------------
// Parse / Rank / Next tests
// -----------------------------------------------------------------------------

func TestParse_KnownTiers(t *testing.T) {
	for _, name := range []string{"FREE", "BASIC", "PREMIUM", "ULTRA"} {
		got, ok := Parse(name)
		if !ok {
			t.Errorf("expected Parse(%q) ok=true, got false", name)
		}
		if string(got) != name {
			t.Errorf("expected Parse(%q)=%q, got %q", name, name, got)
		}
	}
}

func TestParse_UnknownTier(t *testing.T) {
	if _, ok := Parse("GOLD"); ok {
		t.Errorf("expected Parse(GOLD) ok=false, got true")
	}
	// Tier names are case-sensitive on the wire
	if _, ok := Parse("free"); ok {
		t.Errorf("expected Parse(free) ok=false, got true")
	}
}

func TestRank_Ordering(t *testing.T) {
	tiers := All()
	for i := 1; i < len(tiers); i++ {
		if Rank(tiers[i-1]) >= Rank(tiers[i]) {
			t.Errorf("expected Rank(%s) < Rank(%s)", tiers[i-1], tiers[i])
		}
	}
}

func TestRank_UnknownRanksAsFree(t *testing.T) {
	if got := Rank(Tier("GOLD")); got != 0 {
		t.Errorf("expected Rank(GOLD)=0, got %d", got)
	}
}

func TestNext_FreeUpgradesToBasic(t *testing.T) {
	next, ok := Next(Free)
	if !ok {
		t.Fatalf("expected Next(FREE) ok=true, got false")
	}
	if next != Basic {
		t.Errorf("expected Next(FREE)=BASIC, got %s", next)
	}
}

func TestNext_MidTiersUpgradeToUltra(t *testing.T) {
	for _, from := range []Tier{Basic, Premium} {
		next, ok := Next(from)
		if !ok {
			t.Fatalf("expected Next(%s) ok=true, got false", from)
		}
		if next != Ultra {
			t.Errorf("expected Next(%s)=ULTRA, got %s", from, next)
		}
	}
}

func TestNext_UltraHasNoUpgrade(t *testing.T) {
	if _, ok := Next(Ultra); ok {
		t.Errorf("expected Next(ULTRA) ok=false, got true")
	}
	if !IsTop(Ultra) {
		t.Errorf("expected IsTop(ULTRA)=true, got false")
	}
}

// -----------------------------------------------------------------------------
// Catalog tests
// -----------------------------------------------------------------------------

func TestDefaultCatalog_FreeLimits(t *testing.T) {
	l := DefaultCatalog().Limits(Free)

	if l.UploadsPerMonth != 5 {
		t.Errorf("expected FREE uploads=5, got %d", l.UploadsPerMonth)
	}
	if l.AudioMinutesPerMonth != 10 {
		t.Errorf("expected FREE audio=10, got %f", l.AudioMinutesPerMonth)
	}
	if l.ContractsPerMonth != 3 {
		t.Errorf("expected FREE contracts=3, got %d", l.ContractsPerMonth)
	}
	if l.CanUseExtension {
		t.Errorf("expected FREE extension=false, got true")
	}
	if l.PriorityProcessing {
		t.Errorf("expected FREE priority=false, got true")
	}
}

func TestDefaultCatalog_UltraIsUnlimited(t *testing.T) {
	l := DefaultCatalog().Limits(Ultra)

	if l.UploadsPerMonth != Unlimited {
		t.Errorf("expected ULTRA uploads unlimited, got %d", l.UploadsPerMonth)
	}
	if l.AudioMinutesPerMonth != Unlimited {
		t.Errorf("expected ULTRA audio unlimited, got %f", l.AudioMinutesPerMonth)
	}
	if l.ContractsPerMonth != Unlimited {
		t.Errorf("expected ULTRA contracts unlimited, got %d", l.ContractsPerMonth)
	}
	if !l.CanUseExtension || !l.PriorityProcessing {
		t.Errorf("expected ULTRA all features on, got extension=%v priority=%v",
			l.CanUseExtension, l.PriorityProcessing)
	}
}

func TestCatalog_UnknownTierFallsBackToFree(t *testing.T) {
	c := DefaultCatalog()

	got := c.Limits(Tier("GOLD"))
	want := c.Limits(Free)
	if got != want {
		t.Errorf("expected unknown tier to resolve to FREE limits, got %+v", got)
	}
}

func TestDefaultCatalog_Valid(t *testing.T) {
	if err := DefaultCatalog().Validate(); err != nil {
		t.Errorf("expected default catalog to validate, got %v", err)
	}
}

func TestCatalog_ValidateRejectsRegression(t *testing.T) {
	base := DefaultCatalog()
	limits := map[Tier]Limits{}
	for _, tr := range All() {
		limits[tr] = base.Limits(tr)
	}

	// BASIC granting fewer uploads than FREE regresses the ladder
	l := limits[Basic]
	l.UploadsPerMonth = 2
	limits[Basic] = l

	err := NewCatalog(limits).Validate()
	if err == nil {
		t.Fatalf("expected validation error, got nil")
	}

	var merr *MonotonicityError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MonotonicityError, got %T", err)
	}
	if merr.Field != "uploads_per_month" {
		t.Errorf("expected field uploads_per_month, got %s", merr.Field)
	}
}

func TestCatalog_ValidateRejectsFeatureRegression(t *testing.T) {
	base := DefaultCatalog()
	limits := map[Tier]Limits{}
	for _, tr := range All() {
		limits[tr] = base.Limits(tr)
	}

	l := limits[Premium]
	l.CanUseExtension = false
	limits[Premium] = l

	if err := NewCatalog(limits).Validate(); err == nil {
		t.Errorf("expected validation error for extension regression, got nil")
	}
}

func TestCatalog_UnlimitedCountsAsLargest(t *testing.T) {
	// PREMIUM contracts are unlimited; ULTRA staying unlimited must pass
	if err := DefaultCatalog().Validate(); err != nil {
		t.Errorf("expected unlimited-to-unlimited to validate, got %v", err)
	}

	if !lessInt64(100, Unlimited) {
		t.Errorf("expected 100 < unlimited")
	}
	if lessInt64(Unlimited, 100) {
		t.Errorf("expected unlimited not < 100")
	}
	if lessFloat(Unlimited, Unlimited) {
		t.Errorf("expected unlimited not < unlimited")
	}
}
