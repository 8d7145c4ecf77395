package user

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("user not found")

// Role determines what a user is allowed to do. Permission checks live in
// the auth package; the role itself is just data.
type Role string

const (
	// RoleBuyer is a regular customer account.
	RoleBuyer Role = "user"
	// RoleSeller is a merchant account that owns products and earns from sales.
	RoleSeller Role = "seller"
	// RoleAdmin is a platform operator account.
	RoleAdmin Role = "admin"
)

// User represents an account on the marketplace. Sellers additionally carry
// store metadata.
type User struct {
	ID               string
	Username         string
	Name             string
	Role             Role
	StoreName        string
	StoreDescription string
}

// IsSeller reports whether this account is a merchant.
func (u User) IsSeller() bool { return u.Role == RoleSeller }

// IsAdmin reports whether this account is a platform operator.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Repository defines read operations over the user table.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByTokenHash resolves a user from the HMAC-SHA256 hash of their API token.
	GetByTokenHash(ctx context.Context, hash string) (*User, error)
	ListSellers(ctx context.Context) ([]User, error)
}
