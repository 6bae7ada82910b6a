package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "trackota"

// Metrics holds the Prometheus counters, histograms, and gauges for extraction and publishing.
type Metrics struct {
	// Extraction metrics.
	Extractions        *prometheus.CounterVec   // labels: kind, outcome={ok,io,structure,schema,no_data,not_found,rejected}
	ExtractionDuration *prometheus.HistogramVec // labels: kind

	// Publisher metrics.
	DatasetsScanned      prometheus.Counter
	ReportsPublished     prometheus.Counter
	ReportErrors         prometheus.Counter
	PublisherRunning     prometheus.Gauge
	PublishBatchSize     prometheus.Histogram
	PublishCycleDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Extractions,
		m.ExtractionDuration,
		m.DatasetsScanned,
		m.ReportsPublished,
		m.ReportErrors,
		m.PublisherRunning,
		m.PublishBatchSize,
		m.PublishCycleDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Extraction calls by kind and outcome.",
		}, []string{"kind", "outcome"}),
		ExtractionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Duration of one extraction including file discovery and parsing.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"kind"}),
		DatasetsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_scanned_total",
			Help:      "Total dataset folders discovered by the publisher.",
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      "Total dataset reports written to the sink topic.",
		}),
		ReportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_errors_total",
			Help:      "Total dataset folders whose report could not be built.",
		}),
		PublisherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publisher_running",
			Help:      "1 when the report publisher is active, 0 when shut down.",
		}),
		PublishBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_batch_size",
			Help:      "Number of reports per Kafka write.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		PublishCycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_cycle_duration_seconds",
			Help:      "Duration of a complete scan-build-publish cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}
