package httpx

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	prometheus.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// Measure records count and latency per route template. Register it after
// RequestID so 404s fall under the catch-all label.
func (m *ServerMetrics) Measure() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.Requests.WithLabelValues(handler, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	}
}

func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
