package httpapi

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/cart"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), userID(r))
	if err != nil {
		h.internalError(w, r, "get cart failed", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type addItemRequest struct {
	ProductID       string           `json:"productId"`
	Name            string           `json:"name"`
	Quantity        int              `json:"quantity"`
	ListPrice       decimal.Decimal  `json:"listPrice"`
	NegotiatedPrice *decimal.Decimal `json:"negotiatedPrice,omitempty"`
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad request")
		return
	}

	c, err := h.carts.AddItem(r.Context(), userID(r), cart.AddItemInput{
		ProductID:       req.ProductID,
		Name:            req.Name,
		Quantity:        req.Quantity,
		ListPrice:       req.ListPrice,
		NegotiatedPrice: req.NegotiatedPrice,
	})
	if err != nil {
		if errors.Is(err, cart.ErrInvalidItem) {
			writeError(w, r, http.StatusBadRequest, "invalid cart item")
			return
		}
		h.internalError(w, r, "add cart item failed", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
