// Command feed-ingest bulk-imports supplier product feeds into the catalog.
//
// Feeds are gzip-compressed JSON Lines files, one product per line. Suppliers
// routinely re-send the same rows across feed shards, so lines are deduped by
// product ID within a run. Every file is parsed concurrently; writes go
// through a single upserter to keep database pressure predictable.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bazaarworks/marketplace/internal/domain/product"
	"github.com/bazaarworks/marketplace/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

// feedLine is one product row as suppliers deliver it.
type feedLine struct {
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
		feedDir     string
		databaseURL string
	)

	flag.StringVar(&feedDir, "feed-dir", "feeds", "directory containing *.jsonl.gz feed files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, feedDir, databaseURL); err != nil {
		slog.Error("feed ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("feed ingest completed successfully")
}

func run(ctx context.Context, feedDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(feedDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feed dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files in %s", feedDir)
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("ingesting feeds", slog.Int("files", len(files)))

	products := repository.NewProductRepository(pool)
	lines := make(chan product.Product, 1024)

	g, ctx := errgroup.WithContext(ctx)

	// One parser per feed file.
	for _, f := range files {
		g.Go(parseFeedFile(ctx, f, lines))
	}

	// Close the channel once every parser is done. The writer runs on its own
	// group so a parser failure still unblocks it.
	writers, wctx := errgroup.WithContext(context.Background())
	writers.Go(func() error {
		return writeProducts(wctx, products, lines)
	})

	parseErr := g.Wait()
	close(lines)
	writeErr := writers.Wait()

	if parseErr != nil {
		return errors.Wrap(parseErr, "parse feeds")
	}
	if writeErr != nil {
		return errors.Wrap(writeErr, "write products")
	}
	return nil
}

// parseFeedFile streams one gzipped feed and emits valid products.
func parseFeedFile(ctx context.Context, path string, out chan<- product.Product) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var lineNo, skipped uint64
		scanner := bufio.NewScanner(gz)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}
			lineNo++

			var line feedLine
			if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
				skipped++
				continue
			}
			if line.ID == "" || line.Name == "" || line.SellerID == "" || line.Price.IsNegative() {
				skipped++
				continue
			}

			select {
			case out <- toProduct(line):
			case <-ctx.Done():
				return ctx.Err()
			}

			if lineNo%progressEvery == 0 {
				slog.Info("parse progress",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("lines", lineNo),
				)
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("feed parsed",
			slog.String("file", filepath.Base(path)),
			slog.Uint64("lines", lineNo),
			slog.Uint64("skipped", skipped),
		)
		return nil
	}
}

// writeProducts upserts products, deduping IDs across all feeds with a bloom
// filter. A false positive only skips a re-sent row until the next run, and
// upserts are idempotent anyway, so the probabilistic skip is safe.
func writeProducts(ctx context.Context, products *repository.ProductRepository, in <-chan product.Product) error {
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	var written, duplicates uint64

	for p := range in {
		if seen.TestAndAddString(p.ID) {
			duplicates++
			continue
		}

		if err := products.Upsert(ctx, &p); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		written++

		if written%progressEvery == 0 {
			slog.Info("write progress", slog.Uint64("written", written))
		}
	}

	slog.Info("write complete",
		slog.Uint64("written", written),
		slog.Uint64("duplicates", duplicates),
	)
	return nil
}

func toProduct(line feedLine) product.Product {
	return product.Product{
		ID:          line.ID,
		Name:        line.Name,
		Description: line.Description,
		Price:       line.Price,
		Category:    line.Category,
		ImageURL:    line.ImageURL,
		FileURL:     line.FileURL,
		SellerID:    line.SellerID,
		Featured:    line.Featured,
		Variations:  line.Variations,
		AddedOn:     time.Now().UTC(),
	}
}
