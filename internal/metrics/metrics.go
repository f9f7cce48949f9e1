package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Simulation metrics
	simulationsTotal   *prometheus.CounterVec
	simulationDuration prometheus.Histogram
	tradesExecuted     prometheus.Counter
	seriesLength       prometheus.Histogram
	jobsActive         *prometheus.GaugeVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Simulation metrics
	r.simulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hindsight_simulations_total",
			Help: "Total number of simulation runs",
		},
		[]string{"status"},
	)
	r.simulationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hindsight_simulation_duration_seconds",
			Help:    "Simulation run duration in seconds",
			Buckets: []float64{.001, .01, .1, .5, 1, 5, 10, 30, 60},
		},
	)
	r.tradesExecuted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hindsight_trades_executed_total",
			Help: "Total number of trades executed across all runs",
		},
	)
	r.seriesLength = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hindsight_series_points",
			Help:    "Number of price points per simulated series",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)
	r.jobsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hindsight_jobs_active",
			Help: "Number of active jobs",
		},
		[]string{"type"},
	)

	reg.MustRegister(r.simulationsTotal)
	reg.MustRegister(r.simulationDuration)
	reg.MustRegister(r.tradesExecuted)
	reg.MustRegister(r.seriesLength)
	reg.MustRegister(r.jobsActive)

	return r
}

// Handler returns an HTTP handler that serves the registry in the
// Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordSimulation records one completed (or failed) simulation run.
func (r *Registry) RecordSimulation(status string, duration float64, points, trades int) {
	r.simulationsTotal.WithLabelValues(status).Inc()
	r.simulationDuration.Observe(duration)
	r.seriesLength.Observe(float64(points))
	r.tradesExecuted.Add(float64(trades))
}

// SetJobsActive sets the number of active jobs of a type.
func (r *Registry) SetJobsActive(jobType string, count int) {
	r.jobsActive.WithLabelValues(jobType).Set(float64(count))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
