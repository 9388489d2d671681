package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/middleware"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/service"
	"github.com/noah-isme/learnhub-api/internal/utils"
)

// EnrollmentHandler exposes enrollment endpoints for students.
type EnrollmentHandler struct {
	service service.EnrollmentService
	logger  zerolog.Logger
}

// NewEnrollmentHandler constructs an enrollment handler.
func NewEnrollmentHandler(service service.EnrollmentService, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger.With().Str("component", "enrollment_handler").Logger(),
	}
}

// Register mounts enrollment routes.
func (h *EnrollmentHandler) Register(router fiber.Router) {
	student := middleware.RequireRole(models.RoleStudent)

	router.Post("/courses/:id/enroll", student, h.enroll)
	router.Get("/enrollments", student, h.list)
	router.Put("/enrollments/:id/progress", student, h.updateProgress)
	router.Put("/enrollments/:id/complete", student, h.complete)
}

func (h *EnrollmentHandler) enroll(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	enrollment, err := h.service.Enroll(c.UserContext(), userIDFromContext(c), courseID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.Created(c, "enrolled", enrollment)
}

func (h *EnrollmentHandler) list(c *fiber.Ctx) error {
	enrollments, err := h.service.List(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "enrollments retrieved", enrollments)
}

func (h *EnrollmentHandler) updateProgress(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.EnrollmentProgressRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	enrollment, err := h.service.UpdateProgress(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "progress updated", enrollment)
}

func (h *EnrollmentHandler) complete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	enrollment, err := h.service.Complete(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "enrollment completed", enrollment)
}

func (h *EnrollmentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrEnrollmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "enrollment not found")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrEnrollmentForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	default:
		return respondDomainError(c, h.logger, err)
	}
}
