// Package metrics exposes Prometheus instruments for the console engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	obserrors "github.com/JULEEP/admin-frontend/internal/observability/errors"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// DefaultNamespace prefixes every metric name when no namespace is configured.
const DefaultNamespace = "backoffice"

// Options configures New.
type Options struct {
	// Namespace is the metrics namespace (default: DefaultNamespace).
	Namespace string
	// Registry receives the collectors. Default: a fresh registry with Go and process collectors.
	Registry *prometheus.Registry
	// Buckets are the upstream latency histogram buckets. Default: prometheus.DefBuckets.
	Buckets []float64
}

// Metrics holds the console's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	mutations        *prometheus.CounterVec
	staleDiscarded   *prometheus.CounterVec
	viewsMounted     *prometheus.GaugeVec
	viewsReaped      prometheus.Counter
	reaperRuns       *prometheus.CounterVec
	reaperLastOK     prometheus.Gauge
	httpRequests     *prometheus.CounterVec
}

// New registers the console collectors.
func New(opts Options) *Metrics {
	ns := opts.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		upstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream admin API requests by resource, operation and result",
		}, []string{"resource", "operation", "status", "result"}),
		upstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Upstream admin API request latency",
			Buckets:   buckets,
		}, []string{"resource", "operation"}),
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "view",
			Name:      "mutations_total",
			Help:      "Toggle and delete mutations by outcome",
		}, []string{"resource", "kind", "result", "error_class"}),
		staleDiscarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "view",
			Name:      "stale_responses_total",
			Help:      "Responses dropped because the view had been remounted or unmounted",
		}, []string{"resource"}),
		viewsMounted: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "view",
			Name:      "mounted",
			Help:      "Currently mounted resource views",
		}, []string{"resource"}),
		viewsReaped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "view",
			Name:      "reaped_total",
			Help:      "Views unmounted by the idle reaper",
		}),
		reaperRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "reaper",
			Name:      "runs_total",
			Help:      "Idle reaper sweeps by result",
		}, []string{"result", "error_class"}),
		reaperLastOK: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "reaper",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last sweep that completed without error",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Console HTTP requests by method and status",
		}, []string{"method", "status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// UpstreamCall describes one completed upstream request.
type UpstreamCall struct {
	Resource  string
	Operation string // list, patch, delete
	Status    int    // 0 when no response was received
	Duration  time.Duration
	Err       error
}

// ObserveUpstream records an upstream request.
func (m *Metrics) ObserveUpstream(in UpstreamCall) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if in.Err != nil {
		result = ResultError
	}
	m.upstreamRequests.WithLabelValues(in.Resource, in.Operation, strconv.Itoa(in.Status), result).Inc()
	if in.Duration > 0 {
		m.upstreamDuration.WithLabelValues(in.Resource, in.Operation).Observe(in.Duration.Seconds())
	}
}

// MutationMetric describes the outcome of a toggle or delete.
type MutationMetric struct {
	Resource string
	Kind     string
	Result   string
	Err      error
}

// ObserveMutation records a mutation outcome. Errors are labelled with their class.
func (m *Metrics) ObserveMutation(in MutationMetric) {
	if m == nil {
		return
	}
	class := ""
	if in.Err != nil && in.Result == ResultError {
		class = obserrors.Classify(in.Err)
	}
	m.mutations.WithLabelValues(in.Resource, in.Kind, in.Result, class).Inc()
}

// StaleDiscarded counts a response dropped by the generation check.
func (m *Metrics) StaleDiscarded(resource string) {
	if m == nil {
		return
	}
	m.staleDiscarded.WithLabelValues(resource).Inc()
}

// ViewMounted increments the mounted-view gauge.
func (m *Metrics) ViewMounted(resource string) {
	if m == nil {
		return
	}
	m.viewsMounted.WithLabelValues(resource).Inc()
}

// ViewUnmounted decrements the mounted-view gauge.
func (m *Metrics) ViewUnmounted(resource string) {
	if m == nil {
		return
	}
	m.viewsMounted.WithLabelValues(resource).Dec()
}

// ViewsReaped counts views unmounted by the idle reaper.
func (m *Metrics) ViewsReaped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.viewsReaped.Add(float64(n))
}

// ObserveReap records one reaper sweep that removed n views and sessions.
func (m *Metrics) ObserveReap(n int, err error, at time.Time) {
	if m == nil {
		return
	}
	result := ResultSuccess
	class := ""
	switch {
	case err != nil:
		result = ResultError
		class = obserrors.Classify(err)
	case n == 0:
		result = ResultNoop
	}
	m.reaperRuns.WithLabelValues(result, class).Inc()
	if err == nil {
		m.reaperLastOK.Set(float64(at.Unix()))
	}
}

// ObserveHTTP counts a console HTTP request.
func (m *Metrics) ObserveHTTP(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
