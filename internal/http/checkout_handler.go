package httpapi

import (
	"net/http"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/checkout"
)

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad request")
		return
	}

	q, err := h.checkout.Quote(r.Context(), userID(r), form)
	if err != nil {
		h.internalError(w, r, "quote failed", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad request")
		return
	}

	c, err := h.checkout.Confirm(r.Context(), userID(r), form)
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
