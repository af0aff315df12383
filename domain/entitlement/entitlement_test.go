package entitlement

import (
	"testing"
	"time"

	"github.com/quotagate/quotagate/domain/action"
	"github.com/quotagate/quotagate/domain/tier"
	"github.com/quotagate/quotagate/ports"
)

func freeLimits() tier.Limits {
	return tier.DefaultCatalog().Limits(tier.Free)
}

// -----------------------------------------------------------------------------
// Check tests
// -----------------------------------------------------------------------------

func TestCheck_UploadUnderLimit(t *testing.T) {
	a := ports.Account{Tier: tier.Free, MonthlyUploads: 4}

	d := Check(a, freeLimits(), action.Upload)

	if !d.Allowed {
		t.Errorf("expected Allowed=true at 4/5 uploads, got false")
	}
	if d.Reason != "" {
		t.Errorf("expected empty reason, got %q", d.Reason)
	}
}

func TestCheck_UploadAtLimit(t *testing.T) {
	a := ports.Account{Tier: tier.Free, MonthlyUploads: 5}

	d := Check(a, freeLimits(), action.Upload)

	if d.Allowed {
		t.Errorf("expected Allowed=false at 5/5 uploads, got true")
	}
	if d.Reason != ReasonUploadLimit {
		t.Errorf("expected reason %q, got %q", ReasonUploadLimit, d.Reason)
	}
	if d.Current != 5 || d.Limit != 5 {
		t.Errorf("expected current=5 limit=5, got current=%f limit=%f", d.Current, d.Limit)
	}
	if !d.UpgradePrompt {
		t.Errorf("expected UpgradePrompt=true for FREE denial, got false")
	}
}

func TestCheck_AudioSoftCap(t *testing.T) {
	// 9.5 of 10 minutes used: the next job starts even though any
	// realistic duration will push past the cap.
	a := ports.Account{Tier: tier.Free, MonthlyAudioMinutes: 9.5}

	d := Check(a, freeLimits(), action.Audio)

	if !d.Allowed {
		t.Errorf("expected Allowed=true at 9.5/10 minutes, got false")
	}
}

func TestCheck_AudioAtLimit(t *testing.T) {
	a := ports.Account{Tier: tier.Free, MonthlyAudioMinutes: 10}

	d := Check(a, freeLimits(), action.Audio)

	if d.Allowed {
		t.Errorf("expected Allowed=false at 10/10 minutes, got true")
	}
	if d.Reason != ReasonAudioLimit {
		t.Errorf("expected reason %q, got %q", ReasonAudioLimit, d.Reason)
	}
}

func TestCheck_ContractAtLimit(t *testing.T) {
	a := ports.Account{Tier: tier.Free, MonthlyContracts: 3}

	d := Check(a, freeLimits(), action.Contract)

	if d.Allowed {
		t.Errorf("expected Allowed=false at 3/3 contracts, got true")
	}
	if d.Reason != ReasonContractLimit {
		t.Errorf("expected reason %q, got %q", ReasonContractLimit, d.Reason)
	}
}

func TestCheck_UnlimitedNeverDenies(t *testing.T) {
	ultra := tier.DefaultCatalog().Limits(tier.Ultra)
	a := ports.Account{
		Tier:                tier.Ultra,
		MonthlyUploads:      100000,
		MonthlyAudioMinutes: 100000,
		MonthlyContracts:    100000,
	}

	for _, kind := range []action.Kind{action.Upload, action.Audio, action.Contract} {
		if d := Check(a, ultra, kind); !d.Allowed {
			t.Errorf("expected Allowed=true for ULTRA %s, got false (%s)", kind, d.Reason)
		}
	}
}

func TestCheck_ExtensionDeniedOnFree(t *testing.T) {
	a := ports.Account{Tier: tier.Free}

	d := Check(a, freeLimits(), action.Extension)

	if d.Allowed {
		t.Errorf("expected Allowed=false for FREE extension, got true")
	}
	if d.Reason != ReasonExtensionTier {
		t.Errorf("expected reason %q, got %q", ReasonExtensionTier, d.Reason)
	}
	if !d.UpgradePrompt {
		t.Errorf("expected UpgradePrompt=true, got false")
	}
}

func TestCheck_ExtensionIndependentOfCounters(t *testing.T) {
	// A BASIC account over every counter still streams: extension is a
	// capability, not a metered action.
	basic := tier.DefaultCatalog().Limits(tier.Basic)
	a := ports.Account{
		Tier:                tier.Basic,
		MonthlyUploads:      999,
		MonthlyAudioMinutes: 999,
		MonthlyContracts:    999,
	}

	if d := Check(a, basic, action.Extension); !d.Allowed {
		t.Errorf("expected Allowed=true for BASIC extension, got false (%s)", d.Reason)
	}
}

func TestCheck_UnknownKindFailsClosed(t *testing.T) {
	a := ports.Account{Tier: tier.Ultra}
	ultra := tier.DefaultCatalog().Limits(tier.Ultra)

	d := Check(a, ultra, action.Kind("video"))

	if d.Allowed {
		t.Errorf("expected Allowed=false for unknown kind, got true")
	}
	if d.Reason != ReasonUnknownAction {
		t.Errorf("expected reason %q, got %q", ReasonUnknownAction, d.Reason)
	}
}

func TestCheck_PremiumDenialPrompts(t *testing.T) {
	premium := tier.DefaultCatalog().Limits(tier.Premium)
	a := ports.Account{Tier: tier.Premium, MonthlyUploads: 50}

	d := Check(a, premium, action.Upload)

	if d.Allowed {
		t.Errorf("expected Allowed=false at 50/50 uploads, got true")
	}
	if !d.UpgradePrompt {
		t.Errorf("expected UpgradePrompt=true for PREMIUM denial, got false")
	}
}

func TestNotFound(t *testing.T) {
	d := NotFound()

	if d.Allowed {
		t.Errorf("expected Allowed=false, got true")
	}
	if d.Reason != ReasonAccountNotFound {
		t.Errorf("expected reason %q, got %q", ReasonAccountNotFound, d.Reason)
	}
}

// -----------------------------------------------------------------------------
// Rollover tests
// -----------------------------------------------------------------------------

func TestRolloverDue_SameMonth(t *testing.T) {
	reset := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC)

	if RolloverDue(reset, now) {
		t.Errorf("expected no rollover within the same month")
	}
}

func TestRolloverDue_NextMonth(t *testing.T) {
	reset := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	if !RolloverDue(reset, now) {
		t.Errorf("expected rollover across month boundary")
	}
}

func TestRolloverDue_SameMonthNextYear(t *testing.T) {
	reset := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	if !RolloverDue(reset, now) {
		t.Errorf("expected rollover when the year changed")
	}
}

func TestRollover_ZeroesCountersAndAdvancesDate(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	a := ports.Account{
		Tier:                tier.Basic,
		MonthlyUploads:      12,
		MonthlyAudioMinutes: 87.5,
		MonthlyContracts:    4,
		UsageResetDate:      time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
	}

	out := Rollover(a, now)

	if out.MonthlyUploads != 0 || out.MonthlyAudioMinutes != 0 || out.MonthlyContracts != 0 {
		t.Errorf("expected zeroed counters, got %d/%f/%d",
			out.MonthlyUploads, out.MonthlyAudioMinutes, out.MonthlyContracts)
	}
	if !out.UsageResetDate.Equal(now) {
		t.Errorf("expected reset date %v, got %v", now, out.UsageResetDate)
	}
	if out.Tier != tier.Basic {
		t.Errorf("expected tier unchanged, got %s", out.Tier)
	}
}

// -----------------------------------------------------------------------------
// Record tests
// -----------------------------------------------------------------------------

func TestRecord_Upload(t *testing.T) {
	a := ports.Account{MonthlyUploads: 2}

	out, mutated := Record(a, action.Upload, 1)

	if !mutated {
		t.Errorf("expected mutated=true")
	}
	if out.MonthlyUploads != 3 {
		t.Errorf("expected uploads=3, got %d", out.MonthlyUploads)
	}
}

func TestRecord_FractionalAudio(t *testing.T) {
	a := ports.Account{MonthlyAudioMinutes: 1.5}

	out, mutated := Record(a, action.Audio, 2.5)

	if !mutated {
		t.Errorf("expected mutated=true")
	}
	if out.MonthlyAudioMinutes != 4.0 {
		t.Errorf("expected audio=4.0, got %f", out.MonthlyAudioMinutes)
	}
}

func TestRecord_ExtensionIsNoop(t *testing.T) {
	a := ports.Account{MonthlyUploads: 2, MonthlyAudioMinutes: 3, MonthlyContracts: 1}

	out, mutated := Record(a, action.Extension, 1)

	if mutated {
		t.Errorf("expected mutated=false for extension")
	}
	if out != a {
		t.Errorf("expected account unchanged, got %+v", out)
	}
}

func TestRecord_UnknownKindIsNoop(t *testing.T) {
	a := ports.Account{MonthlyUploads: 2}

	out, mutated := Record(a, action.Kind("video"), 1)

	if mutated {
		t.Errorf("expected mutated=false for unknown kind")
	}
	if out.MonthlyUploads != 2 {
		t.Errorf("expected uploads unchanged, got %d", out.MonthlyUploads)
	}
}

// -----------------------------------------------------------------------------
// Stats tests
// -----------------------------------------------------------------------------

func TestBuildStats_Free(t *testing.T) {
	reset := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	a := ports.Account{
		Tier:                tier.Free,
		MonthlyUploads:      3,
		MonthlyAudioMinutes: 7.5,
		MonthlyContracts:    3,
		UsageResetDate:      reset,
	}

	s := BuildStats(a, freeLimits())

	if s.Tier != tier.Free {
		t.Errorf("expected tier FREE, got %s", s.Tier)
	}
	if s.Uploads != (Stat{Used: 3, Limit: 5, Remaining: 2}) {
		t.Errorf("unexpected uploads stat %+v", s.Uploads)
	}
	if s.AudioMinutes != (Stat{Used: 7.5, Limit: 10, Remaining: 2.5}) {
		t.Errorf("unexpected audio stat %+v", s.AudioMinutes)
	}
	if s.Contracts != (Stat{Used: 3, Limit: 3, Remaining: 0}) {
		t.Errorf("unexpected contracts stat %+v", s.Contracts)
	}
	if s.CanUseExtension || s.PriorityProcessing {
		t.Errorf("expected FREE features off, got extension=%v priority=%v",
			s.CanUseExtension, s.PriorityProcessing)
	}
	if !s.ResetDate.Equal(reset) {
		t.Errorf("expected reset date %v, got %v", reset, s.ResetDate)
	}
}

func TestBuildStats_UnlimitedRemaining(t *testing.T) {
	ultra := tier.DefaultCatalog().Limits(tier.Ultra)
	a := ports.Account{Tier: tier.Ultra, MonthlyUploads: 100}

	s := BuildStats(a, ultra)

	if s.Uploads.Limit != tier.Unlimited {
		t.Errorf("expected limit unlimited, got %f", s.Uploads.Limit)
	}
	if s.Uploads.Remaining != tier.Unlimited {
		t.Errorf("expected remaining unlimited, got %f", s.Uploads.Remaining)
	}
}

func TestBuildStats_OverconsumedClampsToZero(t *testing.T) {
	// The audio soft cap can push usage past the limit; remaining must
	// not go negative.
	a := ports.Account{Tier: tier.Free, MonthlyAudioMinutes: 12.5}

	s := BuildStats(a, freeLimits())

	if s.AudioMinutes.Remaining != 0 {
		t.Errorf("expected remaining=0 when over limit, got %f", s.AudioMinutes.Remaining)
	}
}

// -----------------------------------------------------------------------------
// Recommend tests
// -----------------------------------------------------------------------------

func TestRecommend_UltraHasNothingAbove(t *testing.T) {
	ultra := tier.DefaultCatalog().Limits(tier.Ultra)
	a := ports.Account{Tier: tier.Ultra, MonthlyUploads: 1000000}

	if rec := Recommend(a, ultra); rec != nil {
		t.Errorf("expected nil recommendation for ULTRA, got %+v", rec)
	}
}

func TestRecommend_BelowThreshold(t *testing.T) {
	a := ports.Account{Tier: tier.Free, MonthlyUploads: 3} // 60%

	rec := Recommend(a, freeLimits())

	if rec == nil {
		t.Fatalf("expected non-nil recommendation below threshold")
	}
	if rec.RecommendUpgrade {
		t.Errorf("expected RecommendUpgrade=false at 60%%, got true")
	}
	if rec.CurrentTier != tier.Free {
		t.Errorf("expected current tier FREE, got %s", rec.CurrentTier)
	}
	if len(rec.Reasons) != 0 {
		t.Errorf("expected no reasons, got %v", rec.Reasons)
	}
}

func TestRecommend_FreeAtThreshold(t *testing.T) {
	a := ports.Account{Tier: tier.Free, MonthlyUploads: 4} // exactly 80%

	rec := Recommend(a, freeLimits())

	if rec == nil || !rec.RecommendUpgrade {
		t.Fatalf("expected upgrade recommendation at 80%%, got %+v", rec)
	}
	if rec.RecommendedTier != tier.Basic {
		t.Errorf("expected FREE to recommend BASIC, got %s", rec.RecommendedTier)
	}
	if len(rec.Reasons) != 1 || rec.Reasons[0] != "uploads usage at 80%" {
		t.Errorf("unexpected reasons %v", rec.Reasons)
	}
}

func TestRecommend_BasicRecommendsUltra(t *testing.T) {
	basic := tier.DefaultCatalog().Limits(tier.Basic)
	a := ports.Account{Tier: tier.Basic, MonthlyAudioMinutes: 110} // ~92%

	rec := Recommend(a, basic)

	if rec == nil || !rec.RecommendUpgrade {
		t.Fatalf("expected upgrade recommendation, got %+v", rec)
	}
	if rec.RecommendedTier != tier.Ultra {
		t.Errorf("expected BASIC to recommend ULTRA, got %s", rec.RecommendedTier)
	}
}

func TestRecommend_MultipleReasons(t *testing.T) {
	a := ports.Account{
		Tier:                tier.Free,
		MonthlyUploads:      5,   // 100%
		MonthlyAudioMinutes: 9,   // 90%
		MonthlyContracts:    1,   // 33%
	}

	rec := Recommend(a, freeLimits())

	if rec == nil || !rec.RecommendUpgrade {
		t.Fatalf("expected upgrade recommendation, got %+v", rec)
	}
	if len(rec.Reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %v", rec.Reasons)
	}
	if rec.Reasons[0] != "uploads usage at 100%" {
		t.Errorf("unexpected first reason %q", rec.Reasons[0])
	}
	if rec.Reasons[1] != "audio usage at 90%" {
		t.Errorf("unexpected second reason %q", rec.Reasons[1])
	}
}

func TestRecommend_UnlimitedDimensionNeverCrowds(t *testing.T) {
	premium := tier.DefaultCatalog().Limits(tier.Premium)
	a := ports.Account{Tier: tier.Premium, MonthlyContracts: 100000}

	rec := Recommend(a, premium)

	if rec == nil {
		t.Fatalf("expected non-nil recommendation for PREMIUM")
	}
	if rec.RecommendUpgrade {
		t.Errorf("expected no upgrade from unlimited contracts usage, got %v", rec.Reasons)
	}
}

func TestUsagePercent(t *testing.T) {
	if got := UsagePercent(4, 5); got != 80 {
		t.Errorf("expected 80, got %f", got)
	}
	if got := UsagePercent(10, -1); got != 0 {
		t.Errorf("expected 0 for unlimited, got %f", got)
	}
	if got := UsagePercent(0, 0); got != 0 {
		t.Errorf("expected 0 for zero limit, got %f", got)
	}
}
