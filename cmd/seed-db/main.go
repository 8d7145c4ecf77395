// Command seed-db provisions a development database: demo accounts with
// hashed API tokens, a starter catalog, and the default commission settings.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bazaarworks/marketplace/internal/domain/product"
	"github.com/bazaarworks/marketplace/internal/repository"
)

const (
	upsertUserSQL = `INSERT INTO users (id, username, name, role, token_hash, store_name, store_description, commission_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			token_hash = EXCLUDED.token_hash,
			store_name = EXCLUDED.store_name,
			store_description = EXCLUDED.store_description,
			commission_rate = EXCLUDED.commission_rate`

	setGlobalRateSQL = `UPDATE commission_settings SET global_rate = $1 WHERE id = TRUE`
)

// seedFile is the on-disk shape of the seed data. Tokens are plaintext here;
// only their HMAC-SHA256 hash ever reaches the database.
type seedFile struct {
	GlobalRate *decimal.Decimal `json:"globalCommissionRate"`
	Users      []userJSON       `json:"users"`
	Products   []productJSON    `json:"products"`
}

type userJSON struct {
	ID               string           `json:"id"`
	Username         string           `json:"username"`
	Name             string           `json:"name"`
	Role             string           `json:"role"`
	Token            string           `json:"token"`
	StoreName        string           `json:"storeName"`
	StoreDescription string           `json:"storeDescription"`
	CommissionRate   *decimal.Decimal `json:"commissionRate"`
}

type productJSON struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Price       decimal.Decimal          `json:"price"`
	Category    string                   `json:"category"`
	ImageURL    string                   `json:"imageUrl"`
	FileURL     string                   `json:"fileUrl"`
	SellerID    string                   `json:"sellerId"`
	Featured    bool                     `json:"featured"`
	Variations  []product.VariationGroup `json:"variations"`
}

func main() {
	var (
		databaseURL string
		seedPath    string
		tokenPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/marketplace.json", "path to seed JSON file")
	flag.StringVar(&tokenPepper, "token-pepper", "", "HMAC pepper for token hashing (or MARKET_TOKEN_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if tokenPepper == "" {
		tokenPepper = os.Getenv("MARKET_TOKEN_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath, tokenPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath, pepper string) error {
	slog.Info("reading seed file", slog.String("path", seedPath))

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedUsers(ctx, pool, seed.Users, pepper); err != nil {
		return errors.Wrap(err, "seed users")
	}
	if err := seedProducts(ctx, pool, seed.Products); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if seed.GlobalRate != nil {
		if _, err := pool.Exec(ctx, setGlobalRateSQL, *seed.GlobalRate); err != nil {
			return errors.Wrap(err, "set global commission rate")
		}
		slog.Info("set global commission rate", slog.String("rate", seed.GlobalRate.String()))
	}

	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, users []userJSON, pepper string) error {
	slog.Info("upserting users", slog.Int("count", len(users)))

	for _, u := range users {
		if u.Token == "" {
			return errors.Errorf("user %s has no token", u.ID)
		}

		mac := hmac.New(sha256.New, []byte(pepper))
		mac.Write([]byte(u.Token))
		tokenHash := hex.EncodeToString(mac.Sum(nil))

		if _, err := pool.Exec(ctx, upsertUserSQL,
			u.ID, u.Username, u.Name, u.Role, tokenHash,
			u.StoreName, u.StoreDescription, u.CommissionRate,
		); err != nil {
			return errors.Wrapf(err, "upsert user %s", u.ID)
		}

		slog.Info("upserted user",
			slog.String("id", u.ID),
			slog.String("username", u.Username),
			slog.String("role", u.Role),
		)
	}
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, items []productJSON) error {
	slog.Info("upserting products", slog.Int("count", len(items)))

	products := repository.NewProductRepository(pool)
	for _, p := range items {
		if err := products.Upsert(ctx, &product.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Category:    p.Category,
			ImageURL:    p.ImageURL,
			FileURL:     p.FileURL,
			SellerID:    p.SellerID,
			Featured:    p.Featured,
			Variations:  p.Variations,
			AddedOn:     time.Now().UTC(),
		}); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}
	return nil
}
