package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/middleware"
	"github.com/noah-isme/learnhub-api/internal/scoring"
	"github.com/noah-isme/learnhub-api/internal/service"
	"github.com/noah-isme/learnhub-api/internal/utils"
)

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals(middleware.LocalUserID); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals(middleware.LocalUserRole); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	return service.Actor{
		ID:   userIDFromContext(c),
		Role: userRoleFromContext(c),
	}
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(parsed), nil
}

func parseQueryUint(c *fiber.Ctx, key string) (*uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	result := uint(parsed)
	return &result, nil
}

func parsePage(c *fiber.Ctx, validate *validator.Validate) (dto.PageRequest, error) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return dto.PageRequest{}, err
	}
	if err := validate.Struct(page); err != nil {
		return dto.PageRequest{}, err
	}
	return page.Normalize(), nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func validationDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[toSnake(fieldErr.Field())] = fieldErr.Tag()
	}
	return details
}

func toSnake(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// respondDomainError maps errors shared across handlers; unknown errors become 500.
func respondDomainError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "validation failed", validationDetails(validationErrors))
	case errors.Is(err, scoring.ErrDivisionByZero):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "assignment has no maximum points")
	case errors.Is(err, scoring.ErrDuplicateSubmission):
		return utils.SendError(c, fiber.StatusConflict, "assignment already submitted")
	case errors.Is(err, scoring.ErrAlreadyEnrolled):
		return utils.SendError(c, fiber.StatusConflict, "already enrolled in this course")
	case errors.Is(err, scoring.ErrUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "cannot update this submission")
	case errors.Is(err, scoring.ErrNotGraded):
		return utils.SendError(c, fiber.StatusNotFound, "submission not graded yet")
	case errors.Is(err, scoring.ErrProgressOutOfRange):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "progress must be between 0 and 100")
	case errors.Is(err, scoring.ErrEnrollmentCompleted):
		return utils.SendError(c, fiber.StatusConflict, "enrollment already completed")
	default:
		requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
