package middlewares

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"rumble_backend/internals/metrics"
)

// MetricsMiddleware counts requests by method and status and times them.
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		m.RequestCounter.WithLabelValues(c.Method(), strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(c.Method()).Observe(time.Since(start).Seconds())
		return err
	}
}
