package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "tasksplit_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "server"},
		},
		[]string{"date", "sha", "version"},
	)

	proxyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksplit_proxy_requests_total",
			Help: "Proxy requests by outcome",
		},
		[]string{"outcome"},
	)

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasksplit_upstream_requests_total",
			Help: "Upstream generateContent calls by model and HTTP status class",
		},
		[]string{"model", "code"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasksplit_upstream_duration_seconds",
			Help:    "Upstream generateContent latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
)

// Outcome labels for proxy requests.
const (
	OutcomeSuccess         = "success"
	OutcomeInvalidRequest  = "invalid_request"
	OutcomeMissingConfig   = "missing_configuration"
	OutcomeUpstreamError   = "upstream_error"
	OutcomeUnexpectedError = "unexpected_failure"
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, proxyRequests, upstreamRequests, upstreamDuration)
}

// SetServerBuildInfo sets the build info metric for the server.
func SetServerBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordProxyRequest increments the proxy request counter for outcome.
func RecordProxyRequest(outcome string) {
	proxyRequests.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records one upstream call. code is the HTTP status class
// ("2xx", "4xx", ...) or "error" when no response was received.
func ObserveUpstream(model, code string, d time.Duration) {
	upstreamRequests.WithLabelValues(model, code).Inc()
	upstreamDuration.WithLabelValues(model).Observe(d.Seconds())
}

// StatusClass maps an HTTP status to its class label.
func StatusClass(status int) string {
	switch {
	case status >= 100 && status < 600:
		return string(rune('0'+status/100)) + "xx"
	default:
		return "error"
	}
}
