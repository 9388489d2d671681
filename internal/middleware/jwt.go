package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/learnhub-api/internal/utils"
)

// Locals keys populated by JWTProtected.
const (
	LocalUserID         = "user_id"
	LocalUserRole       = "user_role"
	LocalUserEmail      = "user_email"
	LocalTokenID        = "token_id"
	LocalTokenExpiresAt = "token_expires_at"
)

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// JWTProtected returns a middleware that validates JWT bearer tokens. checker may be nil.
func JWTProtected(secret string, checker RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		userID := extractUserIDFromClaims(claims)
		if userID == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}

		tokenID, _ := claims["jti"].(string)
		if checker != nil && tokenID != "" {
			revoked, err := checker.IsRevoked(c.UserContext(), tokenID)
			if err != nil {
				return utils.SendError(c, fiber.StatusServiceUnavailable, "unable to verify token")
			}
			if revoked {
				return utils.SendError(c, fiber.StatusUnauthorized, "token has been revoked")
			}
		}

		c.Locals(LocalUserID, *userID)
		if role := extractUserRoleFromClaims(claims); role != "" {
			c.Locals(LocalUserRole, role)
		}
		if email, ok := claims["email"].(string); ok {
			c.Locals(LocalUserEmail, email)
		}
		if tokenID != "" {
			c.Locals(LocalTokenID, tokenID)
		}
		if expiresAt, err := claims.GetExpirationTime(); err == nil && expiresAt != nil {
			c.Locals(LocalTokenExpiresAt, expiresAt.Time)
		}

		return c.Next()
	}
}

// TokenExpiry returns the expiry of the verified bearer token, or the zero time.
func TokenExpiry(c *fiber.Ctx) time.Time {
	if value, ok := c.Locals(LocalTokenExpiresAt).(time.Time); ok {
		return value
	}
	return time.Time{}
}

func extractUserIDFromClaims(claims jwt.MapClaims) *uint {
	keys := []string{"sub", "user_id", "id"}
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			if normalized, err := normalizeUserID(value); err == nil && normalized > 0 {
				return &normalized
			}
		}
	}

	return nil
}

func normalizeUserID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}

func extractUserRoleFromClaims(claims jwt.MapClaims) string {
	role, _ := claims["role"].(string)
	return strings.ToLower(strings.TrimSpace(role))
}
