package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/learnhub-api/internal/observability"
)

// SlowRequestThreshold matches the dashboard p95 latency target.
const SlowRequestThreshold = 250 * time.Millisecond

// Observability records request metrics and one structured log line per API request.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if !strings.HasPrefix(c.Path(), "/api/") {
			return err
		}

		duration := time.Since(start)
		route := routeTemplate(c)
		method := c.Method()
		status := c.Response().StatusCode()
		statusLabel := strconv.Itoa(status)

		observability.Requests().WithLabelValues(method, route, statusLabel).Inc()
		observability.Latency().WithLabelValues(method, route).Observe(duration.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.Errors().WithLabelValues(method, route, statusLabel).Inc()
		}

		fields := logger.With().
			Str("correlation_id", GetCorrelationID(c)).
			Str("method", method).
			Str("route", route).
			Int("status", status).
			Dur("latency", duration).
			Bool("slow", duration > SlowRequestThreshold)
		if userID, ok := c.Locals(LocalUserID).(uint); ok {
			fields = fields.Uint("user_id", userID)
		}
		if role, ok := c.Locals(LocalUserRole).(string); ok && role != "" {
			fields = fields.Str("role", role)
		}
		requestLogger := fields.Logger()

		switch {
		case status >= fiber.StatusInternalServerError:
			requestLogger.Error().Msg("request failed")
		case status >= fiber.StatusBadRequest:
			requestLogger.Warn().Msg("request rejected")
		case duration > SlowRequestThreshold:
			requestLogger.Warn().Msg("slow request")
		default:
			requestLogger.Debug().Msg("request completed")
		}

		return err
	}
}

// routeTemplate keeps metric cardinality bounded by labelling with the registered pattern.
func routeTemplate(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" {
		return route.Path
	}
	return c.Path()
}
