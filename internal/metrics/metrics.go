// Package metrics 暴露 any-index 的 Prometheus 指标：缓存命中、失效、
// 上游调用以及 HTTP 请求。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anyindex_cache_lookups_total",
			Help: "Cache lookups by namespace and result (hit/miss)",
		},
		[]string{"namespace", "result"},
	)

	cacheInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anyindex_cache_invalidations_total",
			Help: "Cache entries dropped after an upstream failure",
		},
		[]string{"namespace"},
	)

	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anyindex_upstream_requests_total",
			Help: "Provider and content requests by operation and outcome",
		},
		[]string{"provider", "operation", "status"},
	)

	upstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "anyindex_upstream_request_duration_seconds",
			Help:    "Provider and content request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anyindex_http_requests_total",
			Help: "Total number of browse requests",
		},
		[]string{"outcome", "status"},
	)
)

// RecordCacheLookup 记录一次缓存查找。
func RecordCacheLookup(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(namespace, result).Inc()
}

// RecordCacheInvalidation 记录一次因错误触发的缓存删除。
func RecordCacheInvalidation(namespace string) {
	cacheInvalidationsTotal.WithLabelValues(namespace).Inc()
}

// RecordUpstream 记录一次上游调用及其耗时。
func RecordUpstream(provider, operation string, elapsed time.Duration, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	upstreamRequestsTotal.WithLabelValues(provider, operation, status).Inc()
	upstreamRequestDuration.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

// RecordRequest 记录一次浏览请求的处理结果（render/redirect/back/error）。
func RecordRequest(outcome string, status int) {
	httpRequestsTotal.WithLabelValues(outcome, strconv.Itoa(status)).Inc()
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
