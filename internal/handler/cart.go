package handler

import (
	"net/http"

	"github.com/bazaarworks/marketplace/internal/domain/cart"
	"github.com/bazaarworks/marketplace/internal/domain/user"
)

// cartLineResponse is the wire shape of one basket line.
type cartLineResponse struct {
	Key         string            `json:"key"`
	ProductID   string            `json:"productId"`
	ProductName string            `json:"productName"`
	SellerID    string            `json:"sellerId"`
	UnitPrice   float64           `json:"unitPrice"`
	Quantity    int               `json:"quantity"`
	Selections  map[string]string `json:"selections,omitempty"`
}

type cartResponse struct {
	Items []cartLineResponse `json:"items"`
}

func toCartResponse(lines []cart.Line) cartResponse {
	resp := cartResponse{Items: make([]cartLineResponse, len(lines))}
	for i, l := range lines {
		resp.Items[i] = toCartLineResponse(l)
	}
	return resp
}

func toCartLineResponse(l cart.Line) cartLineResponse {
	return cartLineResponse{
		Key:         l.Key,
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		SellerID:    l.SellerID,
		UnitPrice:   l.UnitPrice.InexactFloat64(),
		Quantity:    l.Quantity,
		Selections:  l.Selections,
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request, u user.User) {
	lines := h.carts.ForUser(u.ID).Snapshot()
	writeJSON(w, http.StatusOK, toCartResponse(lines))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request, u user.User) {
	var req struct {
		ProductID  string            `json:"productId"`
		Selections map[string]string `json:"selections"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	line := h.carts.ForUser(u.ID).AddLine(*p, req.Selections)
	writeJSON(w, http.StatusCreated, toCartLineResponse(line))
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request, u user.User) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := h.carts.ForUser(u.ID)
	c.UpdateQuantity(r.PathValue("key"), req.Quantity)
	writeJSON(w, http.StatusOK, toCartResponse(c.Snapshot()))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request, u user.User) {
	h.carts.ForUser(u.ID).RemoveLine(r.PathValue("key"))
	w.WriteHeader(http.StatusNoContent)
}
