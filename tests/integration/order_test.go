//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestCart_RequiresAuth(t *testing.T) {
	resp := doGet(t, "/api/cart")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCart_AddAndMerge(t *testing.T) {
	clearCart(t, buyerToken)

	add := map[string]any{
		"productId":  "print-city-map",
		"selections": map[string]string{"Size": "A2", "Frame": "Oak"},
	}
	resp := doRequest(t, http.MethodPost, "/api/cart/items", buyerToken, add)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first add: expected 201, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPost, "/api/cart/items", buyerToken, add)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("second add: expected 201, got %d", resp.StatusCode)
	}
	line := decodeJSON[cartLine](t, resp)
	resp.Body.Close()

	// Same product + same selection lands on one line. The key orders option
	// values by group name: Frame before Size.
	if line.Key != "print-city-map-Oak-A2" {
		t.Errorf("line key: got %q, want %q", line.Key, "print-city-map-Oak-A2")
	}
	if line.Quantity != 2 {
		t.Errorf("quantity: got %d, want 2", line.Quantity)
	}

	clearCart(t, buyerToken)
}

func TestCheckout_EmptyCart(t *testing.T) {
	clearCart(t, buyerToken)

	resp := doRequest(t, http.MethodPost, "/api/checkout", buyerToken, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCheckout_IncompleteSelection(t *testing.T) {
	clearCart(t, buyerToken)

	resp := doRequest(t, http.MethodPost, "/api/cart/items", buyerToken,
		map[string]any{"productId": "print-city-map", "selections": map[string]string{"Size": "A3"}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", resp.StatusCode)
	}

	// The Frame group is unselected, so checkout must refuse.
	resp = doRequest(t, http.MethodPost, "/api/checkout", buyerToken, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	clearCart(t, buyerToken)
}

func TestCheckout_TotalsAndHistory(t *testing.T) {
	clearCart(t, buyerToken)

	// 1x Blue Train LP at 34.99, no variations.
	resp := doRequest(t, http.MethodPost, "/api/cart/items", buyerToken,
		map[string]any{"productId": "vinyl-blue-train"})
	resp.Body.Close()

	resp = doRequest(t, http.MethodPost, "/api/checkout", buyerToken, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}
	o := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	if !uuidPattern.MatchString(o.ID) {
		t.Errorf("order ID %q is not a UUID", o.ID)
	}
	// 34.99 * 1.10 = 38.489 rounded to 38.49.
	if o.Total != 38.49 {
		t.Errorf("total: got %v, want 38.49", o.Total)
	}
	if o.TaxRate != 0.10 {
		t.Errorf("taxRate: got %v, want 0.10", o.TaxRate)
	}
	if len(o.Items) != 1 || o.Items[0].SellerID != vinylSeller {
		t.Fatalf("unexpected items: %+v", o.Items)
	}

	// Checkout clears the basket.
	resp = doRequest(t, http.MethodGet, "/api/cart", buyerToken, nil)
	basket := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if len(basket.Items) != 0 {
		t.Errorf("cart not cleared: %d lines", len(basket.Items))
	}

	// The order shows up in the buyer's history.
	resp = doRequest(t, http.MethodGet, "/api/orders", buyerToken, nil)
	history := decodeJSON[[]orderResponse](t, resp)
	resp.Body.Close()

	found := false
	for _, h := range history {
		if h.ID == o.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("order %s missing from history", o.ID)
	}
}
