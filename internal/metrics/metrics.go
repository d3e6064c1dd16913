// Package metrics exposes Prometheus collectors for catalog operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hoard"

// Operation results used as the "result" label.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	assets     prometheus.Gauge
	cacheHits  *prometheus.CounterVec
	cacheMiss  *prometheus.CounterVec
	reloads    *prometheus.CounterVec
	generation prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Catalog operations by name and result",
		}, []string{"operation", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of catalog operations in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"operation"}),
		assets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_assets",
			Help:      "Number of assets currently held by the catalog",
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Result cache hits by cache",
		}, []string{"cache"}),
		cacheMiss: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Result cache misses by cache",
		}, []string{"cache"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Document reloads triggered by file changes",
		}, []string{"result"}),
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_generation",
			Help:      "Current result cache generation",
		}),
	}
	reg.MustRegister(m.operations, m.latency, m.assets, m.cacheHits, m.cacheMiss, m.reloads, m.generation)
	return m
}

// Observe records one operation and its latency since start.
func (m *Metrics) Observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// SetAssets sets the catalog size gauge.
func (m *Metrics) SetAssets(n int) {
	if m == nil {
		return
	}
	m.assets.Set(float64(n))
}

// CacheLookup counts a hit or miss for the named cache.
func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.WithLabelValues(cache).Inc()
		return
	}
	m.cacheMiss.WithLabelValues(cache).Inc()
}

// Reload counts a watch-triggered reload.
func (m *Metrics) Reload(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.reloads.WithLabelValues(ResultError).Inc()
		return
	}
	m.reloads.WithLabelValues(ResultOK).Inc()
}

// SetGeneration sets the cache generation gauge.
func (m *Metrics) SetGeneration(gen uint64) {
	if m == nil {
		return
	}
	m.generation.Set(float64(gen))
}

// Registry returns the underlying registry for scraping or inspection.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
