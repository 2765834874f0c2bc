package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the private registry every collector of this process is registered on.
var Registry = prometheus.NewRegistry()

var (
	predictionStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_started_total",
		Help: "Total predictions started",
	}, []string{"model_type"})
	predictionCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_completed_total",
		Help: "Total predictions completed",
	}, []string{"model_type"})
	predictionFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_failed_total",
		Help: "Total predictions failed",
	}, []string{"model_type"})
	predictionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prediction_duration_ms",
		Help:    "Prediction duration in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000},
	}, []string{"model_type"})
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})
)

func init() {
	Registry.MustRegister(
		predictionStarted,
		predictionCompleted,
		predictionFailed,
		predictionDuration,
		httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IncPredictionStarted increments the started counter.
func IncPredictionStarted(modelType string) {
	predictionStarted.WithLabelValues(modelType).Inc()
}

// IncPredictionCompleted increments the completed counter.
func IncPredictionCompleted(modelType string) {
	predictionCompleted.WithLabelValues(modelType).Inc()
}

// IncPredictionFailed increments the failed counter.
func IncPredictionFailed(modelType string) {
	predictionFailed.WithLabelValues(modelType).Inc()
}

// ObservePredictionDuration records how long a prediction took.
func ObservePredictionDuration(modelType string, d time.Duration) {
	if d < 0 {
		d = 0
	}
	predictionDuration.WithLabelValues(modelType).Observe(float64(d) / float64(time.Millisecond))
}

// ObserveRequest counts a completed HTTP request.
func ObserveRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
