package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarworks/marketplace/internal/domain/user"
)

const (
	getUserByIDSQL = `SELECT id, username, name, role, store_name, store_description
		FROM users WHERE id = $1`

	getUserByTokenHashSQL = `SELECT id, username, name, role, store_name, store_description
		FROM users WHERE token_hash = $1`

	listSellersSQL = `SELECT id, username, name, role, store_name, store_description
		FROM users WHERE role = 'seller' ORDER BY id`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID returns a single user by their identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	return &u, nil
}

// GetByTokenHash resolves a user from the HMAC-SHA256 hash of their API token.
func (r *UserRepository) GetByTokenHash(ctx context.Context, hash string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByTokenHashSQL, hash)
	if err != nil {
		return nil, fmt.Errorf("getting user by token: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user by token: %w", err)
	}
	return &u, nil
}

// ListSellers returns every seller account ordered by ID.
func (r *UserRepository) ListSellers(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx, listSellersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing sellers: %w", err)
	}
	return pgx.CollectRows(rows, scanUser)
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var (
		u    user.User
		role string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Name, &role, &u.StoreName, &u.StoreDescription)
	u.Role = user.Role(role)
	return u, err
}
