package httpapi

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type walletResponse struct {
	UserID  string          `json:"userId"`
	Balance decimal.Decimal `json:"balance"`
}

// GetWallet is read-only; balances change only through checkout.
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	balance, err := h.checkout.WalletBalance(r.Context(), uid)
	if err != nil {
		h.internalError(w, r, "get wallet failed", err)
		return
	}
	writeJSON(w, http.StatusOK, walletResponse{UserID: uid, Balance: balance})
}
