// Package cart maintains the mutable pre-order basket for one shopping
// session. Lines are keyed by product plus variation selection; the key is
// the sole criterion for line identity and merge eligibility.
package cart

import (
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bazaarworks/marketplace/internal/domain/product"
)

// Line is one row in the basket: a product snapshot, a quantity and a
// specific variation selection. Selections map variation-group name to the
// chosen option label. A line whose product declares variation groups is not
// orderable until every group has a selection; the basket itself tolerates
// incomplete selections, order creation rejects them.
type Line struct {
	Key         string
	ProductID   string
	ProductName string
	SellerID    string
	UnitPrice   decimal.Decimal
	Quantity    int
	Selections  map[string]string
}

// LineKey derives the deterministic identity of a cart line from the product
// ID and the selected option values, ordered by variation-group name.
func LineKey(productID string, selections map[string]string) string {
	groups := slices.Sorted(maps.Keys(selections))

	parts := make([]string, 0, len(groups)+1)
	parts = append(parts, productID)
	for _, g := range groups {
		parts = append(parts, selections[g])
	}
	return strings.Join(parts, "-")
}

// Cart holds the ordered lines of a single basket. A cart is owned by exactly
// one user session; it is not safe for concurrent use and does not need to be.
type Cart struct {
	lines []Line
}

// New returns an empty basket.
func New() *Cart {
	return &Cart{}
}

// AddLine merges the product into the basket. Two adds with the same product
// and the same selection land on one line with summed quantity; a new
// combination appends a line with quantity 1. The updated line is returned.
func (c *Cart) AddLine(p product.Product, selections map[string]string) Line {
	key := LineKey(p.ID, selections)

	for i := range c.lines {
		if c.lines[i].Key == key {
			c.lines[i].Quantity++
			return c.lines[i]
		}
	}

	line := Line{
		Key:         key,
		ProductID:   p.ID,
		ProductName: p.Name,
		SellerID:    p.SellerID,
		UnitPrice:   p.Price,
		Quantity:    1,
		Selections:  maps.Clone(selections),
	}
	c.lines = append(c.lines, line)
	return line
}

// UpdateQuantity sets the line's quantity to the given absolute value.
// A quantity of zero or less removes the line entirely. Updating an absent
// key is a no-op.
func (c *Cart) UpdateQuantity(key string, quantity int) {
	if quantity <= 0 {
		c.RemoveLine(key)
		return
	}
	for i := range c.lines {
		if c.lines[i].Key == key {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// RemoveLine deletes the line with the given key. Removing an absent key is
// a no-op.
func (c *Cart) RemoveLine(key string) {
	c.lines = slices.DeleteFunc(c.lines, func(l Line) bool {
		return l.Key == key
	})
}

// Snapshot returns a copy of the lines in insertion order. The basket is not
// cleared; clearing after a successful order is the caller's responsibility.
func (c *Cart) Snapshot() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	for i := range out {
		out[i].Selections = maps.Clone(out[i].Selections)
	}
	return out
}

// Clear empties the basket.
func (c *Cart) Clear() {
	c.lines = nil
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}
