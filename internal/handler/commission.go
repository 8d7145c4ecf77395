package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bazaarworks/marketplace/internal/domain/auth"
	"github.com/bazaarworks/marketplace/internal/domain/commission"
	"github.com/bazaarworks/marketplace/internal/domain/user"
)

// ledgerRowResponse is the wire shape of one sale/commission/net split.
type ledgerRowResponse struct {
	OrderID     string    `json:"orderId"`
	OrderDate   time.Time `json:"orderDate"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	SellerID    string    `json:"sellerId"`
	Quantity    int       `json:"quantity"`
	Rate        float64   `json:"rate"`
	SalePrice   float64   `json:"salePrice"`
	Commission  float64   `json:"commission"`
	Net         float64   `json:"net"`
}

type ledgerTotalsResponse struct {
	GrossSales float64 `json:"grossSales"`
	Commission float64 `json:"commission"`
	Net        float64 `json:"net"`
}

type ledgerResponse struct {
	Rows   []ledgerRowResponse  `json:"rows"`
	Totals ledgerTotalsResponse `json:"totals"`
}

func toLedgerResponse(rows []commission.Row) ledgerResponse {
	resp := ledgerResponse{Rows: make([]ledgerRowResponse, len(rows))}
	for i, r := range rows {
		resp.Rows[i] = ledgerRowResponse{
			OrderID:     r.OrderID,
			OrderDate:   r.OrderDate,
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			SellerID:    r.SellerID,
			Quantity:    r.Quantity,
			Rate:        r.Rate.InexactFloat64(),
			SalePrice:   r.SalePrice.InexactFloat64(),
			Commission:  r.Commission.InexactFloat64(),
			Net:         r.Net.InexactFloat64(),
		}
	}

	t := commission.Sum(rows)
	resp.Totals = ledgerTotalsResponse{
		GrossSales: t.GrossSales.InexactFloat64(),
		Commission: t.Commission.InexactFloat64(),
		Net:        t.Net.InexactFloat64(),
	}
	return resp
}

func (h *Handler) setGlobalRate(w http.ResponseWriter, r *http.Request, u user.User) {
	if err := auth.Require(auth.CanSetRates(u), "set global commission rate"); err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req struct {
		Rate decimal.Decimal `json:"rate"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.registry.SetGlobalRate(r.Context(), req.Rate); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"rate": req.Rate.InexactFloat64()})
}

// setSellerRate installs an override for one seller; a JSON null rate clears
// the override, reverting the seller to the global rate.
func (h *Handler) setSellerRate(w http.ResponseWriter, r *http.Request, u user.User) {
	if err := auth.Require(auth.CanSetRates(u), "set seller commission rate"); err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req struct {
		Rate *decimal.Decimal `json:"rate"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.registry.SetSellerOverride(r.Context(), r.PathValue("id"), req.Rate); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) platformLedger(w http.ResponseWriter, r *http.Request, u user.User) {
	if err := auth.Require(auth.CanViewPlatformLedger(u), "view platform ledger"); err != nil {
		writeDomainError(w, r, err)
		return
	}

	orders, err := h.history.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	rows, err := h.ledger.LineItemSplits(r.Context(), orders)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerResponse(rows))
}

// sellerLedger reports the acting seller's own splits. Admins may inspect any
// seller via the sellerId query parameter.
func (h *Handler) sellerLedger(w http.ResponseWriter, r *http.Request, u user.User) {
	sellerID := r.URL.Query().Get("sellerId")
	if sellerID == "" {
		sellerID = u.ID
	}
	if err := auth.Require(auth.CanViewSellerLedger(u, sellerID), "view seller ledger"); err != nil {
		writeDomainError(w, r, err)
		return
	}

	orders, err := h.history.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	rows, err := h.ledger.SellerRows(r.Context(), orders, sellerID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerResponse(rows))
}
