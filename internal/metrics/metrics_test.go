package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg, "checkout")

	m.ObserveConfirm("completed")
	m.ObserveConfirm("completed")
	m.ObserveConfirm("insufficient_funds")
	m.ObserveCompensation("credited")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Confirms.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Confirms.WithLabelValues("insufficient_funds")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Compensations.WithLabelValues("credited")))
}

func TestNilCheckoutMetricsIsSafe(t *testing.T) {
	var m *CheckoutMetrics
	m.ObserveConfirm("completed")
	m.ObserveCompensation("failed")
}

func TestHandlerExposesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewServerMetrics(reg, "checkout")
	s.Requests.WithLabelValues("health", "200").Inc()

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "ecommerce_checkout_http_requests_total"))
}
