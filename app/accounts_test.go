package app

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quotagate/quotagate/adapters/clock"
	"github.com/quotagate/quotagate/adapters/idgen"
	"github.com/quotagate/quotagate/adapters/memory"
	"github.com/quotagate/quotagate/domain/tier"
	"github.com/quotagate/quotagate/ports"
)

func newAccountService(t *testing.T) (*AccountService, *memory.AccountStore) {
	t.Helper()
	store := memory.NewAccountStore()
	svc := NewAccountService(AccountDeps{
		Accounts: store,
		Clock:    clock.NewFake(testStart),
		IDGen:    idgen.NewSequential("acc"),
		Logger:   zerolog.Nop(),
	})
	return svc, store
}

func TestAccountCreate_Defaults(t *testing.T) {
	svc, _ := newAccountService(t)

	a, err := svc.Create(context.Background(), "Dev@Example.COM", "Dev", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Email != "dev@example.com" {
		t.Errorf("expected normalized email, got %q", a.Email)
	}
	if a.Tier != tier.Free {
		t.Errorf("expected default tier FREE, got %s", a.Tier)
	}
	if a.MonthlyUploads != 0 || a.MonthlyAudioMinutes != 0 || a.MonthlyContracts != 0 {
		t.Errorf("expected zeroed counters, got %+v", a)
	}
	if !a.UsageResetDate.Equal(testStart) {
		t.Errorf("expected reset date anchored to now, got %v", a.UsageResetDate)
	}
}

func TestAccountCreate_ExplicitTier(t *testing.T) {
	svc, _ := newAccountService(t)

	a, err := svc.Create(context.Background(), "dev@example.com", "", "PREMIUM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Tier != tier.Premium {
		t.Errorf("expected tier PREMIUM, got %s", a.Tier)
	}
}

func TestAccountCreate_UnknownTierRejected(t *testing.T) {
	svc, _ := newAccountService(t)

	if _, err := svc.Create(context.Background(), "dev@example.com", "", "GOLD"); err == nil {
		t.Errorf("expected error for unknown tier, got nil")
	}
}

func TestAccountCreate_EmptyEmailRejected(t *testing.T) {
	svc, _ := newAccountService(t)

	if _, err := svc.Create(context.Background(), "   ", "", ""); err == nil {
		t.Errorf("expected error for empty email, got nil")
	}
}

func TestAccountSetTier_KeepsCounters(t *testing.T) {
	svc, store := newAccountService(t)
	ctx := context.Background()

	a, _ := svc.Create(ctx, "dev@example.com", "", "FREE")
	a.MonthlyUploads = 4
	store.Save(ctx, a)

	got, err := svc.SetTier(ctx, a.ID, "BASIC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Tier != tier.Basic {
		t.Errorf("expected tier BASIC, got %s", got.Tier)
	}
	if got.MonthlyUploads != 4 {
		t.Errorf("expected counters preserved across tier change, got %d", got.MonthlyUploads)
	}
}

func TestAccountSetTier_UnknownTier(t *testing.T) {
	svc, _ := newAccountService(t)

	if _, err := svc.SetTier(context.Background(), "acc-1", "GOLD"); err == nil {
		t.Errorf("expected error for unknown tier, got nil")
	}
}

func TestAccountSetTier_MissingAccount(t *testing.T) {
	svc, _ := newAccountService(t)

	_, err := svc.SetTier(context.Background(), "nope", "BASIC")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
