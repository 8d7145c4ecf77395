package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bazaarworks/marketplace/internal/domain/commission"
)

const (
	getGlobalRateSQL = `SELECT global_rate FROM commission_settings WHERE id = TRUE`

	listOverridesSQL = `SELECT id, commission_rate FROM users
		WHERE commission_rate IS NOT NULL`

	setGlobalRateSQL = `UPDATE commission_settings SET global_rate = $1 WHERE id = TRUE`

	setOverrideSQL = `UPDATE users SET commission_rate = $2 WHERE id = $1`

	clearOverrideSQL = `UPDATE users SET commission_rate = NULL WHERE id = $1`
)

var _ commission.RateRepository = (*RateRepository)(nil)

// RateRepository implements commission.RateRepository backed by PostgreSQL.
// The global rate lives in a single-row settings table; per-seller overrides
// are a nullable column on the user row. Each mutator is one statement, so
// writes serialize on the database without explicit locking.
type RateRepository struct {
	pool *pgxpool.Pool
}

// NewRateRepository returns a RateRepository that uses the given pool.
func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}

// Snapshot reads the global rate and every override inside one repeatable-read
// transaction, so the returned view is consistent at a single instant.
func (r *RateRepository) Snapshot(ctx context.Context) (commission.RateSnapshot, error) {
	var snap commission.RateSnapshot

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return snap, fmt.Errorf("beginning rates snapshot: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx

	if err := tx.QueryRow(ctx, getGlobalRateSQL).Scan(&snap.Global); err != nil {
		return snap, fmt.Errorf("reading global rate: %w", err)
	}

	rows, err := tx.Query(ctx, listOverridesSQL)
	if err != nil {
		return snap, fmt.Errorf("listing overrides: %w", err)
	}

	type overrideRow struct {
		sellerID string
		rate     decimal.Decimal
	}
	overrides, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (overrideRow, error) {
		var o overrideRow
		err := row.Scan(&o.sellerID, &o.rate)
		return o, err
	})
	if err != nil {
		return snap, fmt.Errorf("collecting overrides: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return snap, fmt.Errorf("committing rates snapshot: %w", err)
	}

	snap.Overrides = make(map[string]decimal.Decimal, len(overrides))
	for _, o := range overrides {
		snap.Overrides[o.sellerID] = o.rate
	}
	return snap, nil
}

// SetGlobal replaces the platform-wide default rate.
func (r *RateRepository) SetGlobal(ctx context.Context, rate decimal.Decimal) error {
	_, err := r.pool.Exec(ctx, setGlobalRateSQL, rate)
	if err != nil {
		return fmt.Errorf("setting global rate: %w", err)
	}
	return nil
}

// SetOverride installs or replaces the seller's override rate.
func (r *RateRepository) SetOverride(ctx context.Context, sellerID string, rate decimal.Decimal) error {
	_, err := r.pool.Exec(ctx, setOverrideSQL, sellerID, rate)
	if err != nil {
		return fmt.Errorf("setting override for %q: %w", sellerID, err)
	}
	return nil
}

// ClearOverride removes the seller's override, reverting them to the global rate.
func (r *RateRepository) ClearOverride(ctx context.Context, sellerID string) error {
	_, err := r.pool.Exec(ctx, clearOverrideSQL, sellerID)
	if err != nil {
		return fmt.Errorf("clearing override for %q: %w", sellerID, err)
	}
	return nil
}
