package metrics

import (
	"mortify/database"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mortify"

// Cart request results.
const (
	CartOK          = "ok"
	CartEmpty       = "no_cart"
	CartUnavailable = "unavailable"
	CartDisabled    = "disabled"
	CartError       = "error"
)

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry       *prometheus.Registry
	routeDispatch  *prometheus.CounterVec
	cartRequests   *prometheus.CounterVec
	settingsWrites *prometheus.CounterVec
}

// New creates the collectors. flushes reports how many times the rewrite
// rules were rebuilt; it may be nil.
func New(flushes func() uint64) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		routeDispatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_dispatch_total",
			Help:      "Requests dispatched by matched route kind.",
		}, []string{"kind"}),
		cartRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_count_requests_total",
			Help:      "Cart count requests by result.",
		}, []string{"result"}),
		settingsWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_writes_total",
			Help:      "Settings writes by operation and outcome.",
		}, []string{"op", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.routeDispatch,
		m.cartRequests,
		m.settingsWrites,
		counterFunc("sqlite_queries_total", "SQLite queries executed.", database.SQLiteQueriesTotal),
		counterFunc("sqlite_busy_errors_total", "SQLite queries that failed with SQLITE_BUSY.", database.SQLiteBusyErrorsTotal),
		counterFunc("sqlite_locked_errors_total", "SQLite queries that failed with SQLITE_LOCKED.", database.SQLiteLockedErrorsTotal),
	)
	if flushes != nil {
		m.registry.MustRegister(counterFunc("rewrite_flushes_total", "Times the rewrite rules were rebuilt.", flushes))
	}
	return m
}

func counterFunc(name, help string, fn func() uint64) prometheus.CounterFunc {
	return prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, func() float64 { return float64(fn()) })
}

// ObserveRoute counts one dispatched request.
func (m *Metrics) ObserveRoute(kind string) {
	if m == nil {
		return
	}
	m.routeDispatch.WithLabelValues(kind).Inc()
}

// ObserveCart counts one cart count request.
func (m *Metrics) ObserveCart(result string) {
	if m == nil {
		return
	}
	m.cartRequests.WithLabelValues(result).Inc()
}

// ObserveSettingsWrite counts one settings write or reset.
func (m *Metrics) ObserveSettingsWrite(op, outcome string) {
	if m == nil {
		return
	}
	m.settingsWrites.WithLabelValues(op, outcome).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
