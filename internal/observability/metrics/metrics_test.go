package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/JULEEP/admin-frontend/internal/errors"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return New(Options{Namespace: "test", Registry: prometheus.NewRegistry()})
}

func TestObserveUpstream(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveUpstream(UpstreamCall{Resource: "products", Operation: "list", Status: 200, Duration: 20 * time.Millisecond})
	m.ObserveUpstream(UpstreamCall{Resource: "products", Operation: "delete", Status: 500, Err: errors.New("boom")})

	assert.InDelta(t, 1, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("products", "list", "200", ResultSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("products", "delete", "500", ResultError)), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.upstreamDuration))
}

func TestObserveMutation_ClassifiesErrors(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveMutation(MutationMetric{
		Resource: "staff",
		Kind:     "delete",
		Result:   ResultError,
		Err:      apperrors.NotFound("gone"),
	})
	m.ObserveMutation(MutationMetric{Resource: "staff", Kind: "delete", Result: ResultSuccess})

	assert.InDelta(t, 1, testutil.ToFloat64(m.mutations.WithLabelValues("staff", "delete", ResultError, "not_found")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.mutations.WithLabelValues("staff", "delete", ResultSuccess, "")), 0)
}

func TestViewGauges(t *testing.T) {
	m := newTestMetrics(t)

	m.ViewMounted("orders")
	m.ViewMounted("orders")
	m.ViewUnmounted("orders")
	m.ViewsReaped(3)
	m.ViewsReaped(0)
	m.StaleDiscarded("orders")

	assert.InDelta(t, 1, testutil.ToFloat64(m.viewsMounted.WithLabelValues("orders")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.viewsReaped), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.staleDiscarded.WithLabelValues("orders")), 0)
}

func TestObserveReap(t *testing.T) {
	m := newTestMetrics(t)
	at := time.Unix(1700000000, 0)

	m.ObserveReap(2, nil, at)
	m.ObserveReap(0, nil, at)
	m.ObserveReap(0, apperrors.Transport("redis down", errors.New("dial")), at.Add(time.Minute))

	assert.InDelta(t, 1, testutil.ToFloat64(m.reaperRuns.WithLabelValues(ResultSuccess, "")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.reaperRuns.WithLabelValues(ResultNoop, "")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.reaperRuns.WithLabelValues(ResultError, "transport")), 0)
	assert.InDelta(t, float64(at.Unix()), testutil.ToFloat64(m.reaperLastOK), 0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveUpstream(UpstreamCall{Resource: "x"})
		m.ObserveMutation(MutationMetric{Resource: "x"})
		m.ViewMounted("x")
		m.ViewUnmounted("x")
		m.ViewsReaped(1)
		m.StaleDiscarded("x")
		m.ObserveHTTP(http.MethodGet, 200)
		m.ObserveReap(1, nil, time.Now())
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := newTestMetrics(t)
	m.ObserveHTTP(http.MethodGet, 200)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "test_http_requests_total"))
}
