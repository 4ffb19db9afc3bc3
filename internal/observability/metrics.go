package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// flood-risk service.
type Metrics struct {
	RiskQueries *prometheus.CounterVec // labels: op={current,forecast,area}, outcome={success,invalid_argument,upstream_error,error}

	// Upstream (Open-Meteo) metrics.
	UpstreamRequests  *prometheus.CounterVec   // labels: mode={single,batch}, outcome={success,error}
	UpstreamFallbacks prometheus.Counter
	UpstreamDuration  *prometheus.HistogramVec // labels: mode={single,batch}

	// Scheduled prediction job metrics.
	PredictionsLogged   prometheus.Counter
	PredictionRunErrors prometheus.Counter
	SchedulerRunning    prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RiskQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "risk_queries_total",
			Help:      "Risk query operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "upstream_requests_total",
			Help:      "Open-Meteo requests by mode and outcome.",
		}, []string{"mode", "outcome"}),
		UpstreamFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "upstream_fallbacks_total",
			Help:      "Retries issued without the soil-moisture field after a provider rejection.",
		}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flood_risk",
			Name:      "upstream_request_duration_seconds",
			Help:      "Open-Meteo request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"mode"}),
		PredictionsLogged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "predictions_logged_total",
			Help:      "Prediction log records published to the audit topic.",
		}),
		PredictionRunErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "prediction_run_errors_total",
			Help:      "Per-location failures and publish failures in scheduled prediction runs.",
		}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_risk",
			Name:      "scheduler_running",
			Help:      "1 when the prediction job is active, 0 when shut down.",
		}),
	}

	prometheus.MustRegister(
		m.RiskQueries,
		m.UpstreamRequests,
		m.UpstreamFallbacks,
		m.UpstreamDuration,
		m.PredictionsLogged,
		m.PredictionRunErrors,
		m.SchedulerRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RiskQueries:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flood_risk", Name: "risk_queries_total"}, []string{"op", "outcome"}),
		UpstreamRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flood_risk", Name: "upstream_requests_total"}, []string{"mode", "outcome"}),
		UpstreamFallbacks:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_risk", Name: "upstream_fallbacks_total"}),
		UpstreamDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "flood_risk", Name: "upstream_request_duration_seconds"}, []string{"mode"}),
		PredictionsLogged:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_risk", Name: "predictions_logged_total"}),
		PredictionRunErrors: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_risk", Name: "prediction_run_errors_total"}),
		SchedulerRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "flood_risk", Name: "scheduler_running"}),
	}
}
