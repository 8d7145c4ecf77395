package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is an immutable record of a completed checkout. Once created it is
// append-only history: no mutation, no deletion.
type Order struct {
	ID        string
	UserID    string
	Items     []Item
	Total     decimal.Decimal
	TaxRate   decimal.Decimal
	CreatedAt time.Time
}

// Item is the frozen snapshot of one cart line at checkout time.
type Item struct {
	LineKey     string            `json:"line_key"`
	ProductID   string            `json:"product_id"`
	ProductName string            `json:"product_name"`
	SellerID    string            `json:"seller_id"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	Quantity    int               `json:"quantity"`
	Selections  map[string]string `json:"selections,omitempty"`
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
}
