package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bazaarworks/marketplace/internal/domain/auth"
	"github.com/bazaarworks/marketplace/internal/domain/product"
	"github.com/bazaarworks/marketplace/internal/domain/user"
)

// productResponse is the wire shape of one catalog entry.
type productResponse struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description,omitempty"`
	Price       float64                  `json:"price"`
	Category    string                   `json:"category,omitempty"`
	ImageURL    string                   `json:"imageUrl,omitempty"`
	FileURL     string                   `json:"fileUrl,omitempty"`
	SellerID    string                   `json:"sellerId"`
	Featured    bool                     `json:"featured,omitempty"`
	Variations  []product.VariationGroup `json:"variations,omitempty"`
	AddedOn     time.Time                `json:"addedOn"`
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		FileURL:     p.FileURL,
		SellerID:    p.SellerID,
		Featured:    p.Featured,
		Variations:  p.Variations,
		AddedOn:     p.AddedOn,
	}
}

// productRequest carries the mutable fields of a product on create and update.
type productRequest struct {
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

func (req *productRequest) validate() (string, bool) {
	if req.Name == "" {
		return "name is required", false
	}
	if req.Price.IsNegative() {
		return "price must not be negative", false
	}
	for _, g := range req.Variations {
		if g.Name == "" || len(g.Options) == 0 {
			return "variation groups need a name and at least one option", false
		}
	}
	return "", true
}

// sellerResponse is the public store-directory entry for one seller.
type sellerResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	StoreName        string `json:"storeName,omitempty"`
	StoreDescription string `json:"storeDescription,omitempty"`
}

func (h *Handler) listSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.users.ListSellers(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]sellerResponse, len(sellers))
	for i, s := range sellers {
		resp[i] = sellerResponse{
			ID:               s.ID,
			Name:             s.Name,
			StoreName:        s.StoreName,
			StoreDescription: s.StoreDescription,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request, u user.User) {
	if err := auth.Require(auth.CanPublishProduct(u), "publish product"); err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req productRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	// Sellers always publish under their own account; only admins may
	// publish on behalf of someone else.
	sellerID := u.ID
	if req.SellerID != "" && req.SellerID != u.ID {
		if err := auth.Require(u.IsAdmin(), "publish product for another seller"); err != nil {
			writeDomainError(w, r, err)
			return
		}
		sellerID = req.SellerID
	}

	p := product.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		FileURL:     req.FileURL,
		SellerID:    sellerID,
		Featured:    req.Featured,
		Variations:  req.Variations,
		AddedOn:     time.Now().UTC(),
	}
	if err := h.products.Create(r.Context(), &p); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request, u user.User) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := auth.Require(auth.CanEditProduct(u, *p), "edit product"); err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req productRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.Category = req.Category
	p.ImageURL = req.ImageURL
	p.FileURL = req.FileURL
	p.Featured = req.Featured
	p.Variations = req.Variations

	if err := h.products.Update(r.Context(), p); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request, u user.User) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := auth.Require(auth.CanEditProduct(u, *p), "delete product"); err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.products.Delete(r.Context(), p.ID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
