package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	authLoginsTotal     *prometheus.CounterVec
	interactionsTotal   *prometheus.CounterVec
	registerOnce        sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the storefront API.",
		}, []string{"method", "path", "status"})

		httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"})

		authLoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "auth_logins_total",
			Help:      "Login attempts by account kind and result.",
		}, []string{"kind", "result"})

		interactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "interactions_total",
			Help:      "Stored customer-product interactions by type.",
		}, []string{"tipo"})
	})
}

// ObserveRequest records one finished HTTP request. path should be the route
// pattern, not the raw URL.
func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func IncLogin(kind string, ok bool) {
	if authLoginsTotal == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	authLoginsTotal.WithLabelValues(kind, result).Inc()
}

func IncInteraction(tipo string) {
	if interactionsTotal == nil {
		return
	}
	interactionsTotal.WithLabelValues(tipo).Inc()
}
