package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/middleware"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/service"
	"github.com/noah-isme/learnhub-api/internal/utils"
)

// AssignmentHandler handles assignment endpoints.
type AssignmentHandler struct {
	service   service.AssignmentService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssignmentHandler constructs a new handler instance.
func NewAssignmentHandler(service service.AssignmentService, validator *validator.Validate, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register mounts assignment routes on an authenticated router.
func (h *AssignmentHandler) Register(router fiber.Router) {
	admin := middleware.RequireRole(models.RoleAdmin)

	router.Post("/courses/:id/assignments", admin, h.create)
	router.Get("/courses/:id/assignments", middleware.RequireRole(models.RoleStudent), h.listForStudent)
	router.Put("/assignments/:id", admin, h.update)
	router.Delete("/assignments/:id", admin, h.delete)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.Create(c.UserContext(), actorFromContext(c), courseID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.Created(c, "assignment created", assignment)
}

func (h *AssignmentHandler) listForStudent(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignments, err := h.service.ListForStudent(c.UserContext(), courseID, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssignmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment deleted", nil)
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrCourseForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	default:
		return respondDomainError(c, h.logger, err)
	}
}
