package pos

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/georgemunganga/needsport-pos/internal/platform/apperror"
)

// Handler exposes POS HTTP endpoints.
type Handler struct {
	service Service
	log     *zap.Logger
}

func NewHandler(service Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/pos", func(r chi.Router) {
		r.Post("/sales", h.processSale)             // POST /api/v1/pos/sales
		r.Get("/sales", h.listSales)                // GET  /api/v1/pos/sales?from=&to=
		r.Get("/sales/{id}", h.getSale)             // GET  /api/v1/pos/sales/{id}
		r.Get("/payment-methods", h.paymentMethods) // GET  /api/v1/pos/payment-methods
	})
}

func (h *Handler) processSale(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, apperror.Validation("invalid sale payload: %v", err))
		return
	}
	session, err := req.Session()
	if err != nil {
		h.fail(w, err)
		return
	}
	sale, err := h.service.Checkout(r.Context(), session, req.PaymentMethod)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"sale_id": sale.ID,
		"total":   sale.Total,
		"sale":    sale,
	})
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sales, err := h.service.ListSales(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, sales)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.service.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, sale)
}

func (h *Handler) paymentMethods(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.service.PaymentMethods())
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := apperror.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("pos request failed", zap.Error(err))
	}
	respond(w, status, map[string]interface{}{"success": false, "message": apperror.PublicMessage(err)})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
