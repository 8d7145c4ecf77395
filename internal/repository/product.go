package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bazaarworks/marketplace/internal/domain/product"
)

const (
	productColumns = `id, name, description, price, category, image_url, file_url,
		seller_id, featured, variations, added_on`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY added_on DESC, id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	insertProductSQL = `INSERT INTO products (id, name, description, price, category,
		image_url, file_url, seller_id, featured, variations, added_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	updateProductSQL = `UPDATE products SET name = $2, description = $3, price = $4,
		category = $5, image_url = $6, file_url = $7, featured = $8, variations = $9
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	upsertProductSQL = `INSERT INTO products (id, name, description, price, category,
		image_url, file_url, seller_id, featured, variations, added_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			image_url = EXCLUDED.image_url,
			file_url = EXCLUDED.file_url,
			seller_id = EXCLUDED.seller_id,
			featured = EXCLUDED.featured,
			variations = EXCLUDED.variations`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
// Variation groups are stored as a JSONB array.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the whole catalog, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create inserts a newly published product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	variations, err := json.Marshal(p.Variations)
	if err != nil {
		return fmt.Errorf("marshaling variations: %w", err)
	}

	_, err = r.pool.Exec(ctx, insertProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Category,
		p.ImageURL, p.FileURL, p.SellerID, p.Featured, variations, p.AddedOn,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Upsert inserts the product or replaces an existing row with the same ID.
// Used by bulk ingest paths where re-running must be idempotent; added_on is
// preserved on conflict.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	variations, err := json.Marshal(p.Variations)
	if err != nil {
		return fmt.Errorf("marshaling variations: %w", err)
	}

	_, err = r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Category,
		p.ImageURL, p.FileURL, p.SellerID, p.Featured, variations, p.AddedOn,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

// Update replaces the mutable fields of an existing product. The owning
// seller never changes here.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	variations, err := json.Marshal(p.Variations)
	if err != nil {
		return fmt.Errorf("marshaling variations: %w", err)
	}

	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Category,
		p.ImageURL, p.FileURL, p.Featured, variations,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product from the catalog.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p          product.Product
		price      decimal.Decimal
		variations []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &price, &p.Category,
		&p.ImageURL, &p.FileURL, &p.SellerID, &p.Featured, &variations, &p.AddedOn,
	)
	if err != nil {
		return p, err
	}
	p.Price = price

	if len(variations) > 0 {
		if err := json.Unmarshal(variations, &p.Variations); err != nil {
			return p, fmt.Errorf("unmarshaling variations for %q: %w", p.ID, err)
		}
	}
	return p, nil
}
