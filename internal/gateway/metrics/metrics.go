// Package metrics holds the gateway's Prometheus collectors. Every method is
// safe on a nil *Metrics so services can run without instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "authgate"

type Metrics struct {
	registry *prometheus.Registry

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	magicLinksIssued    prometheus.Counter
	magicLinkRedeems    *prometheus.CounterVec
	assertionChecks     *prometheus.CounterVec
	tokenExchanges      *prometheus.CounterVec
	webhookDeliveries   *prometheus.CounterVec
	fallbackPersists    *prometheus.CounterVec
	housekeepingDeleted prometheus.Counter
}

// New creates the collectors on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route kind.",
		}, []string{"route", "method", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),

		magicLinksIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "magic_links_issued_total",
			Help:      "Magic links issued.",
		}),
		magicLinkRedeems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "magic_link_redemptions_total",
			Help:      "Magic link redemption attempts by result.",
		}, []string{"result"}),
		assertionChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assertion_verifications_total",
			Help:      "Signed assertion verifications by result.",
		}, []string{"result"}),
		tokenExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_exchanges_total",
			Help:      "Provider authorization code exchanges by provider and result.",
		}, []string{"provider", "result"}),
		webhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Webhook relay attempts by outcome.",
		}, []string{"outcome"}),
		fallbackPersists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_persists_total",
			Help:      "Refresh tokens persisted to the secret file by result.",
		}, []string{"result"}),
		housekeepingDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "housekeeping_deleted_magic_links_total",
			Help:      "Expired magic links removed by housekeeping.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.magicLinksIssued,
		m.magicLinkRedeems,
		m.assertionChecks,
		m.tokenExchanges,
		m.webhookDeliveries,
		m.fallbackPersists,
		m.housekeepingDeleted,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Instrument measures requests served by next under the given route label.
// The label is the route kind rather than the path, so tokens in paths or
// unknown URLs never explode cardinality.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		m.httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(sw.code)).Inc()
	})
}

func (m *Metrics) MagicLinkIssued() {
	if m != nil {
		m.magicLinksIssued.Inc()
	}
}

// MagicLinkRedeemed records a redemption attempt: ok, not_found, expired,
// used, inactive_app or error.
func (m *Metrics) MagicLinkRedeemed(result string) {
	if m != nil {
		m.magicLinkRedeems.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) AssertionVerified(result string) {
	if m != nil {
		m.assertionChecks.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) TokenExchanged(provider, result string) {
	if m != nil {
		m.tokenExchanges.WithLabelValues(provider, result).Inc()
	}
}

func (m *Metrics) WebhookDelivered(outcome string) {
	if m != nil {
		m.webhookDeliveries.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) FallbackPersisted(result string) {
	if m != nil {
		m.fallbackPersists.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) HousekeepingDeleted(n int64) {
	if m != nil && n > 0 {
		m.housekeepingDeleted.Add(float64(n))
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
