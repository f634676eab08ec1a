package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/clock"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/http/middleware"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/metrics"
)

type Deps struct {
	Logger   *zap.Logger
	Checkout Checkout
	Carts    Carts
	Orders   OrderReader
	Search   Searcher
	Clock    clock.Clock

	Metrics          *metrics.ServerMetrics
	Gatherer         prometheus.Gatherer
	CORSAllowOrigins []string
}

func NewRouter(d Deps) http.Handler {
	h := NewHandler(d)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(h.logger, d.Metrics))
	r.Use(middleware.Recover(h.logger))
	r.Use(middleware.CORS(d.CORSAllowOrigins))

	r.Get("/health", h.Health)
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))
	}

	r.Get("/api/suggestions", h.Suggestions)

	r.Route("/api/users/{userId}", func(r chi.Router) {
		r.Use(middleware.UserScope)

		r.Get("/cart", h.GetCart)
		r.Post("/cart/items", h.AddCartItem)

		r.Get("/wallet", h.GetWallet)

		r.Post("/checkout/quote", h.Quote)
		r.Post("/checkout/confirm", h.Confirm)

		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{orderId}", h.GetOrder)
		r.Get("/orders/{orderId}/document", h.GetDocument)
	})

	return r
}
