package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/clock"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/http/middleware"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/suggest"
)

const maxBodyBytes = 1 << 20

type Checkout interface {
	Quote(ctx context.Context, userID string, form checkout.Form) (checkout.Quote, error)
	Confirm(ctx context.Context, userID string, form checkout.Form) (checkout.Completion, error)
	WalletBalance(ctx context.Context, userID string) (decimal.Decimal, error)
}

type Carts interface {
	Get(ctx context.Context, userID string) (*cart.Cart, error)
	AddItem(ctx context.Context, userID string, in cart.AddItemInput) (*cart.Cart, error)
}

type OrderReader interface {
	FindByID(ctx context.Context, userID, orderID string) (order.Order, error)
	List(ctx context.Context, userID string) ([]order.Order, error)
}

type Searcher interface {
	Search(ctx context.Context, query string) []suggest.Suggestion
}

type Handler struct {
	logger   *zap.Logger
	checkout Checkout
	carts    Carts
	orders   OrderReader
	search   Searcher
	clock    clock.Clock
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		logger:   d.Logger,
		checkout: d.Checkout,
		carts:    d.Carts,
		orders:   d.Orders,
		search:   d.Search,
		clock:    d.Clock,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.clock == nil {
		h.clock = clock.NewSystem()
	}
	return h
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "checkout-service"})
}

type errorResponse struct {
	Error         string             `json:"error"`
	CorrelationID string             `json:"correlationId,omitempty"`
	Blockers      []checkout.Blocker `json:"blockers,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, CorrelationID: middleware.GetCorrelationID(r.Context())})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// internalError logs the cause and hides it from the client.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("correlation_id", middleware.GetCorrelationID(r.Context())),
	)
	writeError(w, r, http.StatusInternalServerError, "internal error")
}

func (h *Handler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:         "checkout is not ready",
			CorrelationID: middleware.GetCorrelationID(r.Context()),
			Blockers:      verr.Blockers,
		})
	case errors.Is(err, checkout.ErrInsufficientFunds):
		writeError(w, r, http.StatusConflict, "wallet balance changed, review the order and confirm again")
	case errors.Is(err, checkout.ErrConfirmInFlight):
		writeError(w, r, http.StatusConflict, "a confirmation is already in progress")
	case errors.Is(err, checkout.ErrPersistence):
		writeError(w, r, http.StatusServiceUnavailable, "your order could not be saved, please try again")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusRequestTimeout, "checkout was cancelled before payment")
	default:
		h.internalError(w, r, "checkout failed", err)
	}
}

// userID is the path user bound by middleware.UserScope.
func userID(r *http.Request) string {
	return middleware.GetUserID(r.Context())
}
