//go:build integration

package integration

import (
	"math"
	"net/http"
	"testing"
)

func TestCommission_OnlyAdminSetsRates(t *testing.T) {
	resp := doRequest(t, http.MethodPut, "/api/admin/commission/global", sellerPrint,
		map[string]any{"rate": "0.20"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestCommission_InvalidRate(t *testing.T) {
	resp := doRequest(t, http.MethodPut, "/api/admin/commission/global", adminToken,
		map[string]any{"rate": "1.5"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCommission_OverrideUnknownSeller(t *testing.T) {
	resp := doRequest(t, http.MethodPut, "/api/admin/commission/sellers/no-such-seller", adminToken,
		map[string]any{"rate": "0.05"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestLedger_AccessControl(t *testing.T) {
	resp := doRequest(t, http.MethodGet, "/api/admin/ledger", sellerPrint, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("platform ledger as seller: expected 403, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, "/api/seller/ledger?sellerId="+vinylSeller, sellerPrint, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign seller ledger: expected 403, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, "/api/seller/ledger?sellerId="+vinylSeller, adminToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin viewing seller ledger: expected 200, got %d", resp.StatusCode)
	}
}

// TestLedger_SplitsReconcile places an order and verifies that commission
// plus net equals the sale price on every row, and that changing the
// seller's rate rewrites history on the next read.
func TestLedger_SplitsReconcile(t *testing.T) {
	clearCart(t, buyerToken)

	resp := doRequest(t, http.MethodPost, "/api/cart/items", buyerToken,
		map[string]any{"productId": "print-botanical", "selections": map[string]string{"Size": "A3"}})
	resp.Body.Close()

	resp = doRequest(t, http.MethodPost, "/api/checkout", buyerToken, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}
	o := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	// The print seller is seeded with a 0.15 override over the 0.10 global.
	resp = doRequest(t, http.MethodGet, "/api/seller/ledger", sellerPrint, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("seller ledger: expected 200, got %d", resp.StatusCode)
	}
	ledger := decodeJSON[ledgerResponse](t, resp)
	resp.Body.Close()

	var found bool
	for _, row := range ledger.Rows {
		if row.OrderID != o.ID {
			continue
		}
		found = true
		if row.Rate != 0.15 {
			t.Errorf("rate: got %v, want 0.15", row.Rate)
		}
		// 40.00 gross: 6.00 commission, 34.00 net.
		if row.SalePrice != 40.0 || row.Commission != 6.0 || row.Net != 34.0 {
			t.Errorf("split: got %v/%v/%v", row.SalePrice, row.Commission, row.Net)
		}
	}
	if !found {
		t.Fatalf("order %s not in seller ledger", o.ID)
	}

	for _, row := range ledger.Rows {
		if diff := math.Abs(row.Commission + row.Net - row.SalePrice); diff > 1e-9 {
			t.Errorf("row %s does not reconcile: %v + %v != %v",
				row.OrderID, row.Commission, row.Net, row.SalePrice)
		}
	}

	// Override change applies to the already-placed order.
	resp = doRequest(t, http.MethodPut, "/api/admin/commission/sellers/"+printSeller, adminToken,
		map[string]any{"rate": "0.25"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("set override: expected 204, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, "/api/seller/ledger", sellerPrint, nil)
	ledger = decodeJSON[ledgerResponse](t, resp)
	resp.Body.Close()

	for _, row := range ledger.Rows {
		if row.OrderID == o.ID && row.Commission != 10.0 {
			t.Errorf("retroactive commission: got %v, want 10.0", row.Commission)
		}
	}

	// Restore the seeded override for other tests.
	resp = doRequest(t, http.MethodPut, "/api/admin/commission/sellers/"+printSeller, adminToken,
		map[string]any{"rate": "0.15"})
	resp.Body.Close()
}
