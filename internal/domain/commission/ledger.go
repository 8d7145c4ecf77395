package commission

import (
	"context"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/bazaarworks/marketplace/internal/domain/order"
)

// Row is the derived sale/commission/net split for one order line item.
// Rows are never persisted; they are recomputed from the current registry
// state on every query.
type Row struct {
	OrderID     string
	OrderDate   time.Time
	ProductID   string
	ProductName string
	SellerID    string
	Quantity    int
	Rate        decimal.Decimal
	SalePrice   decimal.Decimal
	Commission  decimal.Decimal
	Net         decimal.Decimal
}

// Totals is the aggregate of a set of ledger rows.
type Totals struct {
	GrossSales decimal.Decimal
	Commission decimal.Decimal
	Net        decimal.Decimal
}

// Ledger produces financial views over orders. It is read-only: it consumes
// order history and the rate registry, and computes splits on demand.
type Ledger struct {
	rates RateRepository
}

// NewLedger creates a Ledger reading rates from the given repository.
func NewLedger(rates RateRepository) *Ledger {
	return &Ledger{rates: rates}
}

// LineItemSplits flattens the orders into one row per line item. Rates come
// from a single registry snapshot taken at call time, so one call is
// internally consistent even while rates change concurrently. Rows are
// ordered by order date descending; items within one order keep their
// insertion order.
func (l *Ledger) LineItemSplits(ctx context.Context, orders []order.Order) ([]Row, error) {
	snap, err := l.rates.Snapshot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot rates")
	}
	return splitRows(snap, orders), nil
}

// SellerTotals sums gross sales, commission and net over the given seller's
// line items.
func (l *Ledger) SellerTotals(ctx context.Context, orders []order.Order, sellerID string) (Totals, error) {
	rows, err := l.SellerRows(ctx, orders, sellerID)
	if err != nil {
		return Totals{}, err
	}
	return Sum(rows), nil
}

// PlatformTotals sums gross sales, commission and net over every line item
// regardless of seller. It equals the sum of SellerTotals across all sellers
// appearing in the orders.
func (l *Ledger) PlatformTotals(ctx context.Context, orders []order.Order) (Totals, error) {
	rows, err := l.LineItemSplits(ctx, orders)
	if err != nil {
		return Totals{}, err
	}
	return Sum(rows), nil
}

// SellerRows filters the splits to one seller, preserving row order.
func (l *Ledger) SellerRows(ctx context.Context, orders []order.Order, sellerID string) ([]Row, error) {
	rows, err := l.LineItemSplits(ctx, orders)
	if err != nil {
		return nil, err
	}

	out := rows[:0:0]
	for _, r := range rows {
		if r.SellerID == sellerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func splitRows(snap RateSnapshot, orders []order.Order) []Row {
	// Most recent orders first; the stable sort keeps ties in input order.
	sorted := make([]order.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	var rows []Row
	for _, o := range sorted {
		for _, item := range o.Items {
			rate := snap.Effective(item.SellerID)
			salePrice := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			com := salePrice.Mul(rate).Round(2)
			rows = append(rows, Row{
				OrderID:     o.ID,
				OrderDate:   o.CreatedAt,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				SellerID:    item.SellerID,
				Quantity:    item.Quantity,
				Rate:        rate,
				SalePrice:   salePrice,
				Commission:  com,
				// Net is the exact complement so that commission + net
				// always reconciles to the sale price.
				Net: salePrice.Sub(com),
			})
		}
	}
	return rows
}

// Sum aggregates an already computed row set. Callers that need both rows and
// totals should split once and sum the rows, keeping both views on the same
// rate snapshot.
func Sum(rows []Row) Totals {
	t := Totals{
		GrossSales: decimal.Zero,
		Commission: decimal.Zero,
		Net:        decimal.Zero,
	}
	for _, r := range rows {
		t.GrossSales = t.GrossSales.Add(r.SalePrice)
		t.Commission = t.Commission.Add(r.Commission)
		t.Net = t.Net.Add(r.Net)
	}
	return t
}
