package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/learnhub-api/internal/utils"
)

// RateLimit creates a limiter keyed by the authenticated user, falling back to the client IP.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   window,
		KeyGenerator: rateLimitKey(identifier),
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests, try again later")
		},
	})
}

func rateLimitKey(identifier string) func(c *fiber.Ctx) string {
	return func(c *fiber.Ctx) string {
		subject := c.IP()
		if userID, ok := c.Locals(LocalUserID).(uint); ok && userID > 0 {
			subject = fmt.Sprintf("user:%d", userID)
		}
		return fmt.Sprintf("%s:%s", identifier, subject)
	}
}
