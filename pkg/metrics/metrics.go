// Package metrics defines the Prometheus collectors reported by index builds
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the index builder.
type Metrics struct {
	DocumentsIndexedTotal prometheus.Counter
	BuildsTotal           *prometheus.CounterVec
	PhaseDuration         *prometheus.HistogramVec
	IndexTerms            prometheus.Gauge
	IndexPostings         prometheus.Gauge
	ArtifactBytes         prometheus.Gauge
	ShardDocCount         *prometheus.GaugeVec
	PublishTotal          *prometheus.CounterVec
}

// New creates the collectors and registers them with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates the collectors and registers them with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocumentsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "indexbuilder_documents_indexed_total",
				Help: "Total documents indexed across all builds.",
			},
		),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexbuilder_builds_total",
				Help: "Total builds by status (success, failure).",
			},
			[]string{"status"},
		),
		PhaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "indexbuilder_phase_duration_seconds",
				Help:    "Duration of each build phase in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"phase"},
		),
		IndexTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "indexbuilder_index_terms",
				Help: "Distinct terms in the most recent index.",
			},
		),
		IndexPostings: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "indexbuilder_index_postings",
				Help: "Postings in the most recent index.",
			},
		),
		ArtifactBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "indexbuilder_artifact_bytes",
				Help: "Size of the most recent serialized artifact.",
			},
		),
		ShardDocCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "indexbuilder_shard_document_count",
				Help: "Number of documents per build shard.",
			},
			[]string{"shard_id"},
		),
		PublishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexbuilder_publish_total",
				Help: "Artifact publish operations by sink and status.",
			},
			[]string{"sink", "status"},
		),
	}

	reg.MustRegister(
		m.DocumentsIndexedTotal,
		m.BuildsTotal,
		m.PhaseDuration,
		m.IndexTerms,
		m.IndexPostings,
		m.ArtifactBytes,
		m.ShardDocCount,
		m.PublishTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
