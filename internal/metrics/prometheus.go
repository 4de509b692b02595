package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// exporter mirrors the collector into a Prometheus registry. Each
// Collector owns its registry so several can coexist in one process.
type exporter struct {
	registry  *prometheus.Registry
	durations *prometheus.HistogramVec
	cache     *prometheus.CounterVec
}

func newExporter() *exporter {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &exporter{
		registry: reg,
		// Labels:
		//   - operation: tree_build, analyze, db_query, request
		durations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "recipescape",
				Name:      "operation_duration_seconds",
				Help:      "Duration of recipescape operations in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"operation"},
		),
		// Labels:
		//   - result: hit, miss
		cache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recipescape",
				Name:      "annotation_cache_lookups_total",
				Help:      "Annotation cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.prom.registry, promhttp.HandlerOpts{})
}
