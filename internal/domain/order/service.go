package order

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bazaarworks/marketplace/internal/domain/cart"
	"github.com/bazaarworks/marketplace/internal/domain/product"
)

// ErrEmptyCart is returned when checkout is attempted on an empty basket.
var ErrEmptyCart = fmt.Errorf("cart is empty")

// ProductNotFoundError indicates a cart line references a product that no
// longer exists in the catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a cart line carries a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// IncompleteSelectionError indicates a line's product declares variation
// groups that the selection does not cover. Order creation is the final gate
// even when the basket allowed the incomplete line transiently.
type IncompleteSelectionError struct {
	ProductID     string
	MissingGroups []string
}

func (e *IncompleteSelectionError) Error() string {
	return fmt.Sprintf("product %s requires a selection for: %s",
		e.ProductID, strings.Join(e.MissingGroups, ", "))
}

// InvalidSelectionError indicates a selection names a variation group or
// option the product does not declare. Selections are a closed mapping keyed
// by the product's own variation schema.
type InvalidSelectionError struct {
	ProductID string
	Group     string
	Option    string
}

func (e *InvalidSelectionError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("product %s has no option %q in group %q", e.ProductID, e.Option, e.Group)
	}
	return fmt.Sprintf("product %s has no variation group %q", e.ProductID, e.Group)
}

// Service turns a cart snapshot into a priced, immutable order. Creating an
// order is the single irreversible operation in the core; there is no
// corresponding edit or delete.
type Service struct {
	products product.Repository
	orders   Repository
	now      func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(products product.Repository, orders Repository) *Service {
	return &Service{
		products: products,
		orders:   orders,
		now:      time.Now,
	}
}

// Create prices the cart snapshot, validates every line against the live
// catalog, and persists a new order. The total is computed exactly once from
// the lines and the tax rate in effect now; it is never recomputed.
func (s *Service) Create(ctx context.Context, userID string, lines []cart.Line, taxRate decimal.Decimal) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]string, len(lines))
	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: line.ProductID}
		}
		ids[i] = line.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	productMap := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	items := make([]Item, len(lines))
	subtotal := decimal.Zero
	for i, line := range lines {
		p, ok := productMap[line.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: line.ProductID}
		}
		if err := validateSelection(p, line.Selections); err != nil {
			return nil, err
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		subtotal = subtotal.Add(p.Price.Mul(qty))

		items[i] = Item{
			LineKey:     line.Key,
			ProductID:   p.ID,
			ProductName: p.Name,
			SellerID:    p.SellerID,
			UnitPrice:   p.Price,
			Quantity:    line.Quantity,
			Selections:  line.Selections,
		}
	}

	total := subtotal.Mul(decimal.NewFromInt(1).Add(taxRate)).Round(2)

	o := &Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Items:     items,
		Total:     total,
		TaxRate:   taxRate,
		CreatedAt: s.now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return o, nil
}

// ListByUser returns the user's order history.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// validateSelection checks the selection against the product's variation
// schema: every declared group must be chosen, and nothing outside the schema
// may be named.
func validateSelection(p product.Product, selections map[string]string) error {
	var missing []string
	for _, g := range p.Variations {
		chosen, ok := selections[g.Name]
		if !ok || chosen == "" {
			missing = append(missing, g.Name)
			continue
		}
		if !g.HasOption(chosen) {
			return &InvalidSelectionError{ProductID: p.ID, Group: g.Name, Option: chosen}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &IncompleteSelectionError{ProductID: p.ID, MissingGroups: missing}
	}

	for name := range selections {
		if _, ok := p.Group(name); !ok {
			return &InvalidSelectionError{ProductID: p.ID, Group: name}
		}
	}
	return nil
}
