package api

import (
	"regexp"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SlowRequestThreshold is the duration above which a request is logged as slow
const SlowRequestThreshold = time.Second

// Metrics holds the HTTP collectors of the service
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewRegistry returns a registry with the process and Go runtime collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewMetrics registers the HTTP collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radio_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "radio_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "radio_http_requests_in_flight",
			Help: "HTTP requests currently being served, WebSockets included",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.inFlight)
	return m
}

var (
	objectIDPattern   = regexp.MustCompile(`/[0-9a-fA-F]{24}(/|$)`)
	uuidPattern       = regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}(/|$)`)
	numericIDPattern  = regexp.MustCompile(`/\d{6,}(/|$)`)
	placeholderSuffix = "/{id}$1"
)

// normalizeRoutePath replaces dynamic segments with placeholders so unmatched
// paths do not blow up label cardinality
//   - /api/v1/admin/requests/507f1f77bcf86cd799439011 -> /api/v1/admin/requests/{id}
func normalizeRoutePath(path string) string {
	path = objectIDPattern.ReplaceAllString(path, placeholderSuffix)
	path = uuidPattern.ReplaceAllString(path, placeholderSuffix)
	path = numericIDPattern.ReplaceAllString(path, placeholderSuffix)
	return path
}
