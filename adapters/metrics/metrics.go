// Package metrics provides Prometheus metrics collection for gatesdb.
package metrics

import (
	"strings"
	"time"

	"github.com/bodygraph/gatesdb/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gatesdb"

// Collector holds all Prometheus metrics for gatesdb.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Catalog metrics
	CatalogReloads      *prometheus.CounterVec
	CatalogReloadErrors *prometheus.CounterVec
	CatalogLastReload   *prometheus.GaugeVec
	CatalogEntities     *prometheus.GaugeVec

	// Snapshot metrics
	SnapshotsSaved *prometheus.CounterVec
}

// New creates a new metrics collector registered with the default registry.
func New() *Collector {
	return newCollector(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return newCollector(promauto.With(reg))
}

func newCollector(factory promauto.Factory) *Collector {
	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path", "status"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),

		CatalogReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_reloads_total",
				Help:      "Total number of successful catalog loads",
			},
			[]string{"locale"},
		),
		CatalogReloadErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_reload_errors_total",
				Help:      "Total number of failed catalog loads",
			},
			[]string{"locale"},
		),
		CatalogLastReload: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_last_reload_timestamp",
				Help:      "Unix timestamp of the last successful catalog load",
			},
			[]string{"locale"},
		),
		CatalogEntities: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_entities",
				Help:      "Number of entries per collection in the loaded catalog",
			},
			[]string{"locale", "collection"},
		),

		SnapshotsSaved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshots_saved_total",
				Help:      "Total number of snapshots written to the store",
			},
			[]string{"locale"},
		),
	}
}

// NormalizePath reduces cardinality by replacing entity ids in API paths.
// e.g., /v1/ru/gates/12 -> /v1/ru/gates/:id
func NormalizePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 4 && parts[0] == "v1" {
		parts[3] = ":id"
		return "/" + strings.Join(parts, "/")
	}
	if len(path) > 50 {
		return path[:50] + "..."
	}
	return path
}

// CatalogLoaded records a successful catalog load.
func (c *Collector) CatalogLoaded(locale string, counts map[string]int, at time.Time) {
	c.CatalogReloads.WithLabelValues(locale).Inc()
	c.CatalogLastReload.WithLabelValues(locale).Set(float64(at.Unix()))
	for collection, n := range counts {
		c.CatalogEntities.WithLabelValues(locale, collection).Set(float64(n))
	}
}

// CatalogLoadFailed records a failed catalog load.
func (c *Collector) CatalogLoadFailed(locale string) {
	c.CatalogReloadErrors.WithLabelValues(locale).Inc()
}

// SnapshotSaved records a snapshot written to the store.
func (c *Collector) SnapshotSaved(locale string) {
	c.SnapshotsSaved.WithLabelValues(locale).Inc()
}

var _ ports.CatalogMetrics = (*Collector)(nil)
