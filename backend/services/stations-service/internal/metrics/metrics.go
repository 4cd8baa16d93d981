package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "evolve_"

	ResultSuccess     = "success"
	ResultError       = "error"
	ResultUnavailable = "unavailable"
	ResultEmpty       = "empty"
	ResultTimeout     = "timeout"

	CacheHit  = "hit"
	CacheMiss = "miss"

	UpstreamGeocoder = "geocoder"
	UpstreamNREL     = "nrel"
)

var (
	registerOnce sync.Once

	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	statusSubmissions *prometheus.CounterVec
	searchCache       *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	feedClients       prometheus.Gauge
)

// Init registers the service collectors with the default registry. Safe to call repeatedly.
func Init() {
	registerOnce.Do(func() {
		upstreamRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "upstream_requests_total",
				Help: "Calls to external services by upstream and result",
			},
			[]string{"upstream", "result"},
		)
		upstreamLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "upstream_latency_seconds",
				Help:    "Latency of external service calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"upstream"},
		)
		statusSubmissions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "station_status_submissions_total",
				Help: "Accepted station status reports by status",
			},
			[]string{"status"},
		)
		searchCache = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "search_cache_total",
				Help: "Station search cache lookups by result",
			},
			[]string{"result"},
		)
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		)
		feedClients = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "status_feed_clients",
				Help: "Connected live status feed clients",
			},
		)

		prometheus.MustRegister(
			upstreamRequests,
			upstreamLatency,
			statusSubmissions,
			searchCache,
			httpRequests,
			feedClients,
		)
	})
}

// ObserveUpstream records one call to an external dependency.
func ObserveUpstream(upstream, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if upstreamRequests != nil {
		upstreamRequests.WithLabelValues(upstream, result).Inc()
	}
	if upstreamLatency != nil && duration > 0 {
		upstreamLatency.WithLabelValues(upstream).Observe(duration.Seconds())
	}
}

// IncStatusSubmission counts a stored status report.
func IncStatusSubmission(status string) {
	if statusSubmissions != nil {
		statusSubmissions.WithLabelValues(status).Inc()
	}
}

// IncSearchCache counts a cache hit or miss.
func IncSearchCache(result string) {
	if searchCache != nil {
		searchCache.WithLabelValues(result).Inc()
	}
}

// IncHTTPRequest counts a served request.
func IncHTTPRequest(route string, code int) {
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	}
}

// SetFeedClients publishes the number of live feed subscribers.
func SetFeedClients(n int) {
	if feedClients != nil {
		feedClients.Set(float64(n))
	}
}
