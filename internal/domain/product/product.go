package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a digital good published by a seller.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
	FileURL     string
	SellerID    string
	Featured    bool
	Variations  []VariationGroup
	AddedOn     time.Time
}

// VariationGroup is one named axis of product configuration (e.g. "Color")
// with a closed set of option labels. A product with variation groups cannot
// be ordered until every group has a chosen option.
type VariationGroup struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Group returns the variation group with the given name, if declared.
func (p Product) Group(name string) (VariationGroup, bool) {
	for _, g := range p.Variations {
		if g.Name == name {
			return g, true
		}
	}
	return VariationGroup{}, false
}

// HasOption reports whether the group declares the given option label.
func (g VariationGroup) HasOption(option string) bool {
	for _, o := range g.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
