package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "alagalert"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Forecast metrics.
	ForecastRequests    *prometheus.CounterVec // labels: outcome={success,error}
	ForecastAPIDuration prometheus.Histogram
	ForecastCache       *prometheus.CounterVec // labels: result={hit,miss}

	// Collaborator API metrics.
	UpstreamRequests *prometheus.CounterVec // labels: service={ibge,brasil-aberto,nominatim,mapbox}, outcome={success,error,empty}
	GeocodeCache     *prometheus.CounterVec // labels: result={hit,miss}

	RiskClassifications *prometheus.CounterVec // labels: level={low,medium,high}

	// Snapshot pipeline metrics.
	SnapshotsPublished prometheus.Counter
	SnapshotErrors     prometheus.Counter
	PipelineRunning    prometheus.Gauge
	SnapshotDuration   prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ForecastRequests,
		m.ForecastAPIDuration,
		m.ForecastCache,
		m.UpstreamRequests,
		m.GeocodeCache,
		m.RiskClassifications,
		m.SnapshotsPublished,
		m.SnapshotErrors,
		m.PipelineRunning,
		m.SnapshotDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_requests_total",
			Help:      "Forecast API requests by outcome.",
		}, []string{"outcome"}),
		ForecastAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_api_duration_seconds",
			Help:      "Forecast API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ForecastCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_cache_total",
			Help:      "Forecast cache lookups by result.",
		}, []string{"result"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Lookup API requests by service and outcome.",
		}, []string{"service", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		RiskClassifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_classifications_total",
			Help:      "Forecast-based risk classifications by level.",
		}, []string{"level"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Total snapshots written to the snapshot topic.",
		}),
		SnapshotErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_errors_total",
			Help:      "Total snapshot build or publish failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the snapshot pipeline is active, 0 when shut down.",
		}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_cycle_duration_seconds",
			Help:      "Duration of a complete build-and-publish snapshot cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}
