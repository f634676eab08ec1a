package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/document"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
)

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context(), userID(r))
	if err != nil {
		h.internalError(w, r, "list orders failed", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.findOrder(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// GetDocument renders the invoice or receipt for an order; format=text
// returns the printable rendering instead of JSON.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	mode := document.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = document.ModeSettled
	}
	if !mode.Valid() {
		writeError(w, r, http.StatusBadRequest, "mode must be proforma_invoice or settled")
		return
	}

	o, ok := h.findOrder(w, r)
	if !ok {
		return
	}

	doc, err := document.Render(o, mode, h.clock.Now())
	if err != nil {
		h.internalError(w, r, "render document failed", err)
		return
	}

	if r.URL.Query().Get("format") != "text" {
		writeJSON(w, http.StatusOK, doc)
		return
	}
	text, err := doc.Text()
	if err != nil {
		h.internalError(w, r, "render document text failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (h *Handler) findOrder(w http.ResponseWriter, r *http.Request) (order.Order, bool) {
	o, err := h.orders.FindByID(r.Context(), userID(r), chi.URLParam(r, "orderId"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return order.Order{}, false
		}
		h.internalError(w, r, "get order failed", err)
		return order.Order{}, false
	}
	return o, true
}
