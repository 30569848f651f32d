package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.OrderCreated("guest")
	m.OrderCreated("guest")
	m.OrderCreated("user")
	m.OrderCancelled()
	m.SettlementFinished("settled")
	m.GatewayCall("verify", 120*time.Millisecond, nil)
	m.GatewayCall("verify", time.Second, errors.New("timeout"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersCreated.WithLabelValues("guest")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersCreated.WithLabelValues("user")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersCancelled))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.settlements.WithLabelValues("settled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gatewayCalls.WithLabelValues("verify", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gatewayCalls.WithLabelValues("verify", "error")))
}

func TestHandlerExposesRequests(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/v1/products/:id", "GET", 200, 5*time.Millisecond)
	m.ObserveRequest("", "GET", 404, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `storefront_http_requests_total{method="GET",route="/api/v1/products/:id",status="200"} 1`)
	assert.Contains(t, string(body), `route="unmatched"`)
	assert.Contains(t, string(body), "go_goroutines")
}
