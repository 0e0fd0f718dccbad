package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "health_surveillance"

// Metrics holds the Prometheus counters, histograms, and gauges for report
// analysis and the Kafka pipeline.
type Metrics struct {
	// Analysis metrics, shared by the HTTP API and the pipeline.
	AnalysesTotal     prometheus.Counter
	ReportsAnalyzed   *prometheus.CounterVec // labels: risk_level={Low,Medium,High}
	OverallRisk       *prometheus.CounterVec // labels: overall_risk={Low,Medium,High,No Data}
	HighRiskLocations prometheus.Counter
	AnalyzeDuration   prometheus.Histogram

	// Pipeline metrics.
	MessagesConsumed        prometheus.Counter
	AnalysesProduced        prometheus.Counter
	DecodeErrors            prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.AnalysesTotal,
		m.ReportsAnalyzed,
		m.OverallRisk,
		m.HighRiskLocations,
		m.AnalyzeDuration,
		m.MessagesConsumed,
		m.AnalysesProduced,
		m.DecodeErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AnalysesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total report batches analyzed.",
		}),
		ReportsAnalyzed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_analyzed_total",
			Help:      "Reports scored, by risk level.",
		}, []string{"risk_level"}),
		OverallRisk: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overall_risk_total",
			Help:      "Batch verdicts, by overall risk.",
		}, []string{"overall_risk"}),
		HighRiskLocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "high_risk_locations_total",
			Help:      "Locations flagged high risk across all analyses.",
		}),
		AnalyzeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analyze_duration_seconds",
			Help:      "Duration of scoring and aggregating one batch.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total report messages read from the source topic.",
		}),
		AnalysesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_produced_total",
			Help:      "Total analyses written to the sink topic.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Total source messages skipped because they were not report objects.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-analyze-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
