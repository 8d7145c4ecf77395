// Package commission holds the two-tier rate model (a global default rate
// overridable per seller) and the derived sale/commission/net reporting.
package commission

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/bazaarworks/marketplace/internal/domain/user"
)

// ErrInvalidRate is returned when a commission rate falls outside [0, 1].
var ErrInvalidRate = errors.New("commission rate must be between 0 and 1")

// SellerNotFoundError indicates a rate override targeted a user that does not
// exist or is not a seller.
type SellerNotFoundError struct {
	SellerID string
}

func (e *SellerNotFoundError) Error() string {
	return fmt.Sprintf("seller %s not found", e.SellerID)
}

// RateSnapshot is a consistent view of the registry at one instant: the
// global rate plus every per-seller override.
type RateSnapshot struct {
	Global    decimal.Decimal
	Overrides map[string]decimal.Decimal
}

// Effective resolves the rate applied to the given seller: the override when
// one is set, the global rate otherwise.
func (s RateSnapshot) Effective(sellerID string) decimal.Decimal {
	if r, ok := s.Overrides[sellerID]; ok {
		return r
	}
	return s.Global
}

// RateRepository defines persistence for the rate registry. Implementations
// must apply each mutation atomically; Snapshot must observe a consistent
// state for the duration of the call.
type RateRepository interface {
	Snapshot(ctx context.Context) (RateSnapshot, error)
	SetGlobal(ctx context.Context, rate decimal.Decimal) error
	SetOverride(ctx context.Context, sellerID string, rate decimal.Decimal) error
	ClearOverride(ctx context.Context, sellerID string) error
}

// Registry is the single source of truth for commission rates. Rates are
// live: changing one alters every subsequent ledger read, including reads
// over historical orders.
type Registry struct {
	rates RateRepository
	users user.Repository
}

// NewRegistry creates a Registry backed by the given repositories.
func NewRegistry(rates RateRepository, users user.Repository) *Registry {
	return &Registry{rates: rates, users: users}
}

// SetGlobalRate replaces the platform-wide default rate. The new rate is
// effective immediately for all subsequent ledger reads.
func (r *Registry) SetGlobalRate(ctx context.Context, rate decimal.Decimal) error {
	if err := validateRate(rate); err != nil {
		return err
	}
	if err := r.rates.SetGlobal(ctx, rate); err != nil {
		return errors.Wrap(err, "set global rate")
	}
	return nil
}

// SetSellerOverride installs or replaces the seller's override; a nil rate
// clears it, reverting the seller to the global rate.
func (r *Registry) SetSellerOverride(ctx context.Context, sellerID string, rate *decimal.Decimal) error {
	u, err := r.users.GetByID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return &SellerNotFoundError{SellerID: sellerID}
		}
		return errors.Wrap(err, "get seller")
	}
	if !u.IsSeller() {
		return &SellerNotFoundError{SellerID: sellerID}
	}

	if rate == nil {
		if err := r.rates.ClearOverride(ctx, sellerID); err != nil {
			return errors.Wrap(err, "clear override")
		}
		return nil
	}

	if err := validateRate(*rate); err != nil {
		return err
	}
	if err := r.rates.SetOverride(ctx, sellerID, *rate); err != nil {
		return errors.Wrap(err, "set override")
	}
	return nil
}

// EffectiveRate returns the rate currently applied to the seller's sales:
// the override when present, the global rate otherwise. Always reads current
// state; nothing is cached.
func (r *Registry) EffectiveRate(ctx context.Context, sellerID string) (decimal.Decimal, error) {
	snap, err := r.rates.Snapshot(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "snapshot rates")
	}
	return snap.Effective(sellerID), nil
}

func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidRate
	}
	return nil
}
