// Package handler exposes the marketplace core over HTTP. Handlers stay
// thin: decode the request, check the capability, call the domain, map the
// result or error back to the wire.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bazaarworks/marketplace/internal/domain/auth"
	"github.com/bazaarworks/marketplace/internal/domain/cart"
	"github.com/bazaarworks/marketplace/internal/domain/commission"
	"github.com/bazaarworks/marketplace/internal/domain/order"
	"github.com/bazaarworks/marketplace/internal/domain/product"
	"github.com/bazaarworks/marketplace/internal/domain/user"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// TokenPepper is the HMAC key used to hash API tokens before lookup.
	TokenPepper []byte
	// TaxRate is applied once to the cart subtotal at checkout, e.g. 0.10.
	TaxRate decimal.Decimal
}

// Handler routes API requests to the domain services.
type Handler struct {
	cfg      Config
	users    user.Repository
	products product.Repository
	carts    *cart.Store
	orders   *order.Service
	history  order.Repository
	registry *commission.Registry
	ledger   *commission.Ledger
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	users user.Repository,
	products product.Repository,
	carts *cart.Store,
	orders *order.Service,
	history order.Repository,
	registry *commission.Registry,
	ledger *commission.Ledger,
) *Handler {
	return &Handler{
		cfg:      cfg,
		users:    users,
		products: products,
		carts:    carts,
		orders:   orders,
		history:  history,
		registry: registry,
		ledger:   ledger,
	}
}

// Routes returns the API mux. Catalog reads are public; everything else
// requires an authenticated user.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("POST /api/products", h.authenticated(h.createProduct))
	mux.HandleFunc("PUT /api/products/{id}", h.authenticated(h.updateProduct))
	mux.HandleFunc("DELETE /api/products/{id}", h.authenticated(h.deleteProduct))

	mux.HandleFunc("GET /api/sellers", h.listSellers)

	mux.HandleFunc("GET /api/cart", h.authenticated(h.getCart))
	mux.HandleFunc("POST /api/cart/items", h.authenticated(h.addCartItem))
	mux.HandleFunc("PATCH /api/cart/items/{key}", h.authenticated(h.updateCartItem))
	mux.HandleFunc("DELETE /api/cart/items/{key}", h.authenticated(h.removeCartItem))

	mux.HandleFunc("POST /api/checkout", h.authenticated(h.checkout))
	mux.HandleFunc("GET /api/orders", h.authenticated(h.listOrders))

	mux.HandleFunc("PUT /api/admin/commission/global", h.authenticated(h.setGlobalRate))
	mux.HandleFunc("PUT /api/admin/commission/sellers/{id}", h.authenticated(h.setSellerRate))
	mux.HandleFunc("GET /api/admin/ledger", h.authenticated(h.platformLedger))
	mux.HandleFunc("GET /api/seller/ledger", h.authenticated(h.sellerLedger))

	return mux
}

// errorResponse is the wire shape of every API error.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// decodeBody unmarshals the request body into v, capping it at 1 MiB.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeDomainError maps domain errors onto HTTP statuses. Anything
// unrecognized is logged and reported as a 500 without leaking detail.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		permErr      *auth.PermissionDeniedError
		sellerErr    *commission.SellerNotFoundError
		qtyErr       *order.InvalidQuantityError
		missingErr   *order.ProductNotFoundError
		selectionErr *order.IncompleteSelectionError
		optionErr    *order.InvalidSelectionError
	)

	switch {
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &permErr):
		writeError(w, http.StatusForbidden, permErr.Error())
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &sellerErr):
		writeError(w, http.StatusNotFound, sellerErr.Error())
	case errors.Is(err, commission.ErrInvalidRate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &qtyErr),
		errors.As(err, &missingErr),
		errors.As(err, &selectionErr),
		errors.As(err, &optionErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
