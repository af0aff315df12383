package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quotagate/quotagate/domain/tier"
	"github.com/quotagate/quotagate/ports"
)

// AccountService handles account provisioning and tier changes. The
// billing subsystem owns tier transitions; this service is the narrow
// surface it goes through.
type AccountService struct {
	accounts ports.AccountStore
	clock    ports.Clock
	idGen    ports.IDGenerator
	logger   zerolog.Logger
}

// AccountDeps contains dependencies for AccountService.
type AccountDeps struct {
	Accounts ports.AccountStore
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   zerolog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(deps AccountDeps) *AccountService {
	return &AccountService{
		accounts: deps.Accounts,
		clock:    deps.Clock,
		idGen:    deps.IDGen,
		logger:   deps.Logger,
	}
}

// Create provisions a new account with zeroed counters and the reset
// date anchored to now. An empty tier defaults to FREE; unknown tier
// names are rejected here, at the boundary, rather than silently mapped.
func (s *AccountService) Create(ctx context.Context, email, name, tierName string) (ports.Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ports.Account{}, fmt.Errorf("create account: email is required")
	}

	t := tier.Free
	if tierName != "" {
		parsed, ok := tier.Parse(tierName)
		if !ok {
			return ports.Account{}, fmt.Errorf("create account: unknown tier %q", tierName)
		}
		t = parsed
	}

	now := s.clock.Now()
	a := ports.Account{
		ID:             s.idGen.New(),
		Email:          email,
		Name:           name,
		Tier:           t,
		UsageResetDate: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.accounts.Create(ctx, a); err != nil {
		return ports.Account{}, err
	}

	s.logger.Info().
		Str("account_id", a.ID).
		Str("tier", string(t)).
		Msg("account created")
	return a, nil
}

// Get retrieves an account by ID.
func (s *AccountService) Get(ctx context.Context, id string) (ports.Account, error) {
	return s.accounts.Get(ctx, id)
}

// SetTier changes an account's subscription tier. Counters are not
// touched: a mid-month upgrade keeps current usage against the new,
// larger limits.
func (s *AccountService) SetTier(ctx context.Context, id, tierName string) (ports.Account, error) {
	t, ok := tier.Parse(tierName)
	if !ok {
		return ports.Account{}, fmt.Errorf("set tier: unknown tier %q", tierName)
	}

	a, err := s.accounts.Get(ctx, id)
	if err != nil {
		return ports.Account{}, err
	}

	a.Tier = t
	a.UpdatedAt = s.clock.Now()
	if err := s.accounts.Save(ctx, a); err != nil {
		return ports.Account{}, err
	}

	s.logger.Info().
		Str("account_id", id).
		Str("tier", string(t)).
		Msg("account tier changed")
	return a, nil
}

// Delete removes an account and its counters.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	return s.accounts.Delete(ctx, id)
}

// List returns accounts with pagination.
func (s *AccountService) List(ctx context.Context, limit, offset int) ([]ports.Account, error) {
	return s.accounts.List(ctx, limit, offset)
}
