// Package metrics defines the Prometheus collectors for index builds and
// queries and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docsim"

// Metrics holds all Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	BuildsTotal        *prometheus.CounterVec
	BuildDuration      prometheus.Histogram
	DocumentsIndexed   prometheus.Gauge
	CandidatePairs     prometheus.Gauge
	QueriesTotal       *prometheus.CounterVec
	QueryLatency       prometheus.Histogram
	QueryResultsCount  prometheus.Histogram
	CandidatesPerQuery prometheus.Histogram
	SnapshotOperations *prometheus.CounterVec
	CorpusFilesSkipped prometheus.Counter
}

// New creates the collectors and registers them on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "index_builds_total",
				Help:      "Total index builds by status (ok, error).",
			},
			[]string{"status"},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "index_build_duration_seconds",
				Help:      "Index build latency in seconds.",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		DocumentsIndexed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "documents_indexed",
				Help:      "Number of documents in the current index.",
			},
		),
		CandidatePairs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "candidate_pairs",
				Help:      "Unordered candidate pairs in the current index.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total queries by kind (document, pairs) and status.",
			},
			[]string{"kind", "status"},
		),
		QueryLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_latency_seconds",
				Help:      "Query latency in seconds.",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		QueryResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_results_count",
				Help:      "Number of verified results returned per query.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		CandidatesPerQuery: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_candidates_count",
				Help:      "Number of candidates verified per query.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		SnapshotOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_operations_total",
				Help:      "Snapshot reads and writes by operation and status.",
			},
			[]string{"operation", "status"},
		),
		CorpusFilesSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "corpus_files_skipped_total",
				Help:      "Files dropped from the corpus because they produced no shingles.",
			},
		),
	}

	m.registry.MustRegister(
		m.BuildsTotal,
		m.BuildDuration,
		m.DocumentsIndexed,
		m.CandidatePairs,
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryResultsCount,
		m.CandidatesPerQuery,
		m.SnapshotOperations,
		m.CorpusFilesSkipped,
	)

	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape HTTP handler for these metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Status returns the label value for an operation outcome.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
