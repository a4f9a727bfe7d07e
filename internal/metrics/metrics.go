// Package metrics provides Prometheus metrics for the blog.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blog",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "blog",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ArticleWritesTotal counts article writes by action and outcome.
	ArticleWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blog",
			Name:      "article_writes_total",
			Help:      "Total number of article create/update/delete attempts",
		},
		[]string{"action", "result"},
	)

	// EventPublishFailures counts article events that could not be delivered.
	EventPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blog",
			Name:      "event_publish_failures_total",
			Help:      "Total number of article events that failed to publish",
		},
	)
)

// RecordRequest records one handled HTTP request.
func RecordRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordArticleWrite records the outcome of an article write.
func RecordArticleWrite(action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ArticleWritesTotal.WithLabelValues(action, result).Inc()
}
