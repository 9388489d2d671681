package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	HeaderCorrelationID = "X-Correlation-ID"
	LocalCorrelationID  = "correlation_id"

	maxCorrelationIDLength = 64
)

type correlationKey struct{}

// CorrelationID tags each request with an id taken from the caller or freshly generated,
// echoes it back and binds it to the user context so services can log it.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := acceptCorrelationID(c.Get(HeaderCorrelationID))
		if id == "" {
			id = acceptCorrelationID(c.Get(fiber.HeaderXRequestID))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(LocalCorrelationID, id)
		c.Set(HeaderCorrelationID, id)
		c.SetUserContext(context.WithValue(c.UserContext(), correlationKey{}, id))

		return c.Next()
	}
}

// oversized ids are replaced rather than truncated so log lines stay joinable.
func acceptCorrelationID(raw string) string {
	id := strings.TrimSpace(raw)
	if len(id) > maxCorrelationIDLength {
		return ""
	}
	return id
}

// CorrelationIDFromContext returns the id bound by CorrelationID, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// GetCorrelationID returns the correlation id of the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(LocalCorrelationID).(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}
