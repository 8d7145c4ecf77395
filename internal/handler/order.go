package handler

import (
	"net/http"
	"time"

	"github.com/bazaarworks/marketplace/internal/domain/order"
	"github.com/bazaarworks/marketplace/internal/domain/user"
)

// orderResponse is the wire shape of a completed order. Totals are frozen at
// creation time; this is a straight projection, nothing is recomputed.
type orderResponse struct {
	ID        string              `json:"id"`
	Items     []orderItemResponse `json:"items"`
	Total     float64             `json:"total"`
	TaxRate   float64             `json:"taxRate"`
	CreatedAt time.Time           `json:"createdAt"`
}

type orderItemResponse struct {
	LineKey     string            `json:"lineKey"`
	ProductID   string            `json:"productId"`
	ProductName string            `json:"productName"`
	SellerID    string            `json:"sellerId"`
	UnitPrice   float64           `json:"unitPrice"`
	Quantity    int               `json:"quantity"`
	Selections  map[string]string `json:"selections,omitempty"`
}

func toOrderResponse(o order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemResponse{
			LineKey:     item.LineKey,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SellerID:    item.SellerID,
			UnitPrice:   item.UnitPrice.InexactFloat64(),
			Quantity:    item.Quantity,
			Selections:  item.Selections,
		}
	}
	return orderResponse{
		ID:        o.ID,
		Items:     items,
		Total:     o.Total.InexactFloat64(),
		TaxRate:   o.TaxRate.InexactFloat64(),
		CreatedAt: o.CreatedAt,
	}
}

// checkout turns the user's basket into an order. The basket is cleared only
// after the order is persisted; on any failure it stays intact for another
// attempt.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request, u user.User) {
	c := h.carts.ForUser(u.ID)

	o, err := h.orders.Create(r.Context(), u.ID, c.Snapshot(), h.cfg.TaxRate)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	c.Clear()

	writeJSON(w, http.StatusCreated, toOrderResponse(*o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request, u user.User) {
	orders, err := h.orders.ListByUser(r.Context(), u.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}
