package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Analysis outcomes recorded by RecordAnalysis.
const (
	OutcomeSuccess     = "success"
	OutcomeNoContent   = "no_content"
	OutcomeParseFailed = "parse_failed"
	OutcomeUpstream    = "upstream_error"
	OutcomeError       = "error"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Analysis metrics
	analysesTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec
	imageBytes       prometheus.Histogram
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

	r.analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradevision_analyses_total",
			Help: "Total number of chart analyses by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	r.analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradevision_analysis_duration_seconds",
			Help:    "Round trip to the model provider in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider"},
	)
	r.upstreamErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradevision_upstream_errors_total",
			Help: "Non-success responses from the model provider by status code",
		},
		[]string{"provider", "status"},
	)
	r.imageBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tradevision_image_bytes",
			Help:    "Size of submitted base64 image payloads",
			Buckets: prometheus.ExponentialBuckets(16<<10, 2, 10),
		},
	)

	reg.MustRegister(r.analysesTotal)
	reg.MustRegister(r.analysisDuration)
	reg.MustRegister(r.upstreamErrors)
	reg.MustRegister(r.imageBytes)

	return r
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

// RecordAnalysis records a completed analysis round trip.
func (r *Registry) RecordAnalysis(provider, outcome string, duration float64) {
	r.analysesTotal.WithLabelValues(provider, outcome).Inc()
	r.analysisDuration.WithLabelValues(provider).Observe(duration)
}

// RecordUpstreamError records a non-success provider status.
func (r *Registry) RecordUpstreamError(provider string, status int) {
	r.upstreamErrors.WithLabelValues(provider, strconv.Itoa(status)).Inc()
}

// ObserveImageSize records the length of a submitted base64 payload.
func (r *Registry) ObserveImageSize(n int) {
	r.imageBytes.Observe(float64(n))
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
