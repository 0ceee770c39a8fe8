package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Engine metrics
	viewComputations      *prometheus.CounterVec
	viewDuration          *prometheus.HistogramVec
	cacheLookups          *prometheus.CounterVec
	investorsLoaded       prometheus.Gauge
	snapshotsLoaded       prometheus.Gauge
	unclassifiedPositions prometheus.Counter
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

	// Engine metrics
	r.viewComputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holdings_view_computations_total",
			Help: "Total number of analytics views computed (cache misses)",
		},
		[]string{"view"},
	)
	r.viewDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "holdings_view_duration_seconds",
			Help:    "Analytics view computation time in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"view"},
	)
	r.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holdings_cache_lookups_total",
			Help: "Total number of memoization cache lookups",
		},
		[]string{"result"},
	)
	r.investorsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "holdings_investors_loaded",
			Help: "Number of investors in the snapshot store",
		},
	)
	r.snapshotsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "holdings_snapshots_loaded",
			Help: "Number of quarterly snapshots in the snapshot store",
		},
	)
	r.unclassifiedPositions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "holdings_unclassified_positions_total",
			Help: "Total number of position changes without a known sector",
		},
	)

	reg.MustRegister(r.viewComputations)
	reg.MustRegister(r.viewDuration)
	reg.MustRegister(r.cacheLookups)
	reg.MustRegister(r.investorsLoaded)
	reg.MustRegister(r.snapshotsLoaded)
	reg.MustRegister(r.unclassifiedPositions)

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

// RecordView records one computed analytics view.
func (r *Registry) RecordView(view string, seconds float64) {
	r.viewComputations.WithLabelValues(view).Inc()
	r.viewDuration.WithLabelValues(view).Observe(seconds)
}

// RecordUnclassified counts position changes that fell back to the
// unclassified sector.
func (r *Registry) RecordUnclassified(count int) {
	r.unclassifiedPositions.Add(float64(count))
}

// RecordCacheLookup records a cache hit or miss.
func (r *Registry) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// SetLoaded publishes the size of the loaded snapshot store.
func (r *Registry) SetLoaded(investors, snapshots int) {
	r.investorsLoaded.Set(float64(investors))
	r.snapshotsLoaded.Set(float64(snapshots))
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
