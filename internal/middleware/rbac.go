package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/utils"
)

// AuthOptions configures a per-route guard built by WithAuth.
// An empty Roles list admits any authenticated user.
type AuthOptions struct {
	Roles []string
}

// RequireRole rejects requests whose JWT role is not one of roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := roleSet(roles)
	return func(c *fiber.Ctx) error {
		if err := authorize(c, allowed); err != nil {
			return err
		}
		return c.Next()
	}
}

// WithAuth guards a single handler, for routes that share a group with other roles.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	allowed := roleSet(opts.Roles)
	return func(c *fiber.Ctx) error {
		if err := authorize(c, allowed); err != nil {
			return err
		}
		return handler(c)
	}
}

// authorize writes the rejection response itself and returns its error, or nil to proceed.
func authorize(c *fiber.Ctx, allowed map[string]struct{}) error {
	if c.Locals(LocalUserID) == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}
	if len(allowed) == 0 {
		return nil
	}
	role, _ := c.Locals(LocalUserRole).(string)
	if _, ok := allowed[strings.ToLower(strings.TrimSpace(role))]; !ok {
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}
	return nil
}

func roleSet(roles []string) map[string]struct{} {
	set := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if !models.IsValidRole(normalized) {
			panic(fmt.Sprintf("middleware: unknown role %q", role))
		}
		set[normalized] = struct{}{}
	}
	return set
}
