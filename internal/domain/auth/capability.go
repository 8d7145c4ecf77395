// Package auth is the single authorization gate for the marketplace core.
// Callers evaluate a capability before invoking a mutator instead of
// scattering role comparisons at call sites.
package auth

import (
	"fmt"

	"github.com/bazaarworks/marketplace/internal/domain/product"
	"github.com/bazaarworks/marketplace/internal/domain/user"
)

// PermissionDeniedError indicates the acting user lacks the capability
// required for an action.
type PermissionDeniedError struct {
	Action string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Action)
}

// CanSetRates reports whether u may change commission rates.
func CanSetRates(u user.User) bool {
	return u.IsAdmin()
}

// CanPublishProduct reports whether u may add products to the catalog.
func CanPublishProduct(u user.User) bool {
	return u.IsAdmin() || u.IsSeller()
}

// CanEditProduct reports whether u may modify or delete p. Admins may edit
// any product, sellers only their own.
func CanEditProduct(u user.User, p product.Product) bool {
	return u.IsAdmin() || (u.IsSeller() && p.SellerID == u.ID)
}

// CanViewPlatformLedger reports whether u may read the platform-wide ledger.
func CanViewPlatformLedger(u user.User) bool {
	return u.IsAdmin()
}

// CanViewSellerLedger reports whether u may read the ledger scoped to sellerID.
func CanViewSellerLedger(u user.User, sellerID string) bool {
	return u.IsAdmin() || (u.IsSeller() && u.ID == sellerID)
}

// Require converts a capability result into an error suitable for returning
// to callers: nil when allowed, *PermissionDeniedError otherwise.
func Require(allowed bool, action string) error {
	if !allowed {
		return &PermissionDeniedError{Action: action}
	}
	return nil
}
