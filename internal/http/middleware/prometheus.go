package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMiddleware holds the HTTP metrics registered against one registry.
type PrometheusMiddleware struct {
	requestCount     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	finalizeAttempts *prometheus.CounterVec
}

// NewPrometheusMiddleware creates the middleware and registers its metrics.
// Each registry may hold only one instance.
func NewPrometheusMiddleware(reg prometheus.Registerer) (*PrometheusMiddleware, error) {
	m := &PrometheusMiddleware{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		finalizeAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finalize_attempts_total",
				Help: "Finalize attempts by outcome (applied, already_final, rejected, error).",
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.requestCount, m.requestDuration, m.finalizeAttempts} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveFinalize records the outcome of one finalize attempt.
func (m *PrometheusMiddleware) ObserveFinalize(outcome string) {
	m.finalizeAttempts.WithLabelValues(outcome).Inc()
}

// Handler returns the fiber middleware handler.
func (m *PrometheusMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Exclude /metrics from being counted
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		// Route pattern (e.g., /filings/:id) rather than the raw path, falling
		// back to the raw path when no route matched.
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.requestCount.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())

		return err
	}
}
