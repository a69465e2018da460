// Package metrics exposes prometheus collectors for the HTTP surface and
// the two upstream capabilities.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billbrain_http_requests_total",
		Help: "HTTP requests served, by route and status code.",
	}, []string{"route", "status"})

	upstreamCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billbrain_upstream_requests_total",
		Help: "Calls made to hosted model capabilities, by capability and outcome.",
	}, []string{"capability", "outcome"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "billbrain_upstream_duration_seconds",
		Help:    "Latency of hosted model calls.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"capability"})
)

// ObserveRequest records one served HTTP request.
func ObserveRequest(route string, status int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// ObserveUpstream records one capability call and its latency.
func ObserveUpstream(capability string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	upstreamCalls.WithLabelValues(capability, outcome).Inc()
	upstreamDuration.WithLabelValues(capability).Observe(elapsed.Seconds())
}
