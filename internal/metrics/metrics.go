// Package metrics exposes fleet progress in the Prometheus text format.
package metrics

import (
	"net/http"

	"github.com/imyashkale/shutdownmanager/internal/lifecycle"
	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/imyashkale/shutdownmanager/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shutdown_manager"

var (
	entitiesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "entities"),
		"Number of tracked entities by type and shutdown status.",
		[]string{"entity", "status"}, nil,
	)
	revisionDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "store_revision"),
		"Mutations committed since the process started.",
		nil, nil,
	)
)

// fleetCollector reads aggregate counts from the fleet service on every scrape
type fleetCollector struct {
	fleet *services.FleetService
}

func (c *fleetCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- entitiesDesc
	ch <- revisionDesc
}

func (c *fleetCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.fleet.Stats()
	emitSummary(ch, models.EntityApplication, stats.Applications)
	emitSummary(ch, models.EntityServer, stats.Servers)
	ch <- prometheus.MustNewConstMetric(revisionDesc, prometheus.GaugeValue, float64(stats.Revision))
}

func emitSummary(ch chan<- prometheus.Metric, entity models.EntityType, sum lifecycle.Summary) {
	counts := map[lifecycle.Status]int{
		lifecycle.Active:           sum.Active,
		lifecycle.ShutdownPending:  sum.ShutdownPending,
		lifecycle.ShutdownVerified: sum.Verified,
	}
	for status, n := range counts {
		ch <- prometheus.MustNewConstMetric(entitiesDesc, prometheus.GaugeValue, float64(n), string(entity), string(status))
	}
}

// Metrics owns a private registry with the fleet collector and import counters
type Metrics struct {
	registry   *prometheus.Registry
	importRows *prometheus.CounterVec
}

// New registers the collectors for fleet
func New(fleet *services.FleetService) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Import rows processed by entity and outcome.",
		}, []string{"entity", "outcome"}),
	}

	m.registry.MustRegister(
		&fleetCollector{fleet: fleet},
		m.importRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveImport implements services.ImportObserver
func (m *Metrics) ObserveImport(result *models.ImportResult) {
	entity := string(result.Entity)
	m.importRows.WithLabelValues(entity, "created").Add(float64(result.Created))
	m.importRows.WithLabelValues(entity, "updated").Add(float64(result.Updated))
	m.importRows.WithLabelValues(entity, "unchanged").Add(float64(result.Unchanged))
	m.importRows.WithLabelValues(entity, "rejected").Add(float64(result.Rejected))
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
