package pos

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(store *memStore) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(newTestService(store, &invalidations{}), nil).RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestProcessSaleEndpoint(t *testing.T) {
	store := newMemStore()
	p := store.addProduct("Protein Bar", "3.50", 10)
	r := newTestRouter(store)

	body := fmt.Sprintf(`{"payment_method":"card","items":[
		{"product_id":%q,"name":"Protein Bar","category":"snack","price":"3.50","quantity":2}]}`, p.ID)
	rec := do(r, http.MethodPost, "/api/v1/pos/sales", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Success bool   `json:"success"`
		SaleID  string `json:"sale_id"`
		Total   string `json:"total"`
		Sale    Sale   `json:"sale"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.SaleID == "" || resp.Total != "7" {
		t.Errorf("unexpected body %+v", resp)
	}
	if resp.Sale.ItemsCount != 2 || len(resp.Sale.Items) != 1 {
		t.Errorf("unexpected sale %+v", resp.Sale)
	}
	if store.stock[p.ID] != 8 {
		t.Errorf("expected stock 8, got %d", store.stock[p.ID])
	}
}

func TestProcessSaleEmptyCart(t *testing.T) {
	r := newTestRouter(newMemStore())
	rec := do(r, http.MethodPost, "/api/v1/pos/sales", `{"payment_method":"cash","items":[]}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&body)
	if body["success"] != false || body["message"] != "cart is empty" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestProcessSaleBadPayload(t *testing.T) {
	r := newTestRouter(newMemStore())
	for name, body := range map[string]string{
		"malformed json": `{"items":`,
		"bad product id": `{"payment_method":"cash","items":[{"product_id":"7","price":1,"quantity":1}]}`,
		"huge quantity":  `{"payment_method":"cash","items":[{"product_id":"8d7f4b0e-2a55-4f0c-9a57-0f1b7f7e3c11","price":1,"quantity":99999999999}]}`,
		"zero quantity":  `{"payment_method":"cash","items":[{"product_id":"8d7f4b0e-2a55-4f0c-9a57-0f1b7f7e3c11","price":1,"quantity":0}]}`,
		"unknown method": `{"payment_method":"bitcoin","items":[{"product_id":"8d7f4b0e-2a55-4f0c-9a57-0f1b7f7e3c11","price":1,"quantity":1}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			if rec := do(r, http.MethodPost, "/api/v1/pos/sales", body); rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestProcessSaleStockExhausted(t *testing.T) {
	store := newMemStore()
	p := store.addProduct("Creatine", "20", 1)
	r := newTestRouter(store)

	body := fmt.Sprintf(`{"payment_method":"cash","items":[{"product_id":%q,"name":"Creatine","price":20,"quantity":3}]}`, p.ID)
	rec := do(r, http.MethodPost, "/api/v1/pos/sales", body)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if store.stock[p.ID] != 1 {
		t.Error("stock must be untouched")
	}
}

func TestGetSaleEndpoint(t *testing.T) {
	store := newMemStore()
	p := store.addProduct("Cola", "2", 5)
	r := newTestRouter(store)

	body := fmt.Sprintf(`{"payment_method":"cash","items":[{"product_id":%q,"name":"Cola","price":2,"quantity":1}]}`, p.ID)
	created := do(r, http.MethodPost, "/api/v1/pos/sales", body)
	var resp struct {
		SaleID string `json:"sale_id"`
	}
	json.NewDecoder(created.Body).Decode(&resp)

	if rec := do(r, http.MethodGet, "/api/v1/pos/sales/"+resp.SaleID, ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec := do(r, http.MethodGet, "/api/v1/pos/sales/8d7f4b0e-2a55-4f0c-9a57-0f1b7f7e3c11", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec := do(r, http.MethodGet, "/api/v1/pos/sales?from=tomorrow", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad range, got %d", rec.Code)
	}
}

func TestPaymentMethodsEndpoint(t *testing.T) {
	r := newTestRouter(newMemStore())
	rec := do(r, http.MethodGet, "/api/v1/pos/payment-methods", "")

	var methods []string
	json.NewDecoder(rec.Body).Decode(&methods)
	if len(methods) != 2 || methods[0] != "cash" || methods[1] != "card" {
		t.Errorf("unexpected methods %v", methods)
	}
}
