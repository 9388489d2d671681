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

// CourseHandler manages the course catalogue endpoints.
type CourseHandler struct {
	service   service.CourseService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(service service.CourseService, validator *validator.Validate, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "course_handler").Logger(),
	}
}

// RegisterPublic attaches the anonymous catalogue route.
func (h *CourseHandler) RegisterPublic(router fiber.Router) {
	router.Get("/courses/browse", h.browse)
}

// Register attaches authenticated routes.
func (h *CourseHandler) Register(router fiber.Router) {
	admin := middleware.RequireRole(models.RoleAdmin)

	router.Get("/courses", admin, h.list)
	router.Post("/courses", admin, h.create)
	router.Get("/courses/:id", h.get)
	router.Put("/courses/:id", admin, h.update)
	router.Delete("/courses/:id", admin, h.delete)
	router.Get("/my-courses", middleware.RequireRole(models.RoleStudent), h.myCourses)
}

func (h *CourseHandler) browse(c *fiber.Ctx) error {
	page, err := parsePage(c, h.validator)
	if err != nil {
		return h.handleError(c, err)
	}

	courses, err := h.service.Browse(c.UserContext(), page)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, courses.Items, "courses retrieved", courses.Pagination)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	page, err := parsePage(c, h.validator)
	if err != nil {
		return h.handleError(c, err)
	}

	courses, err := h.service.List(c.UserContext(), page)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, courses.Items, "courses retrieved", courses.Pagination)
}

func (h *CourseHandler) myCourses(c *fiber.Ctx) error {
	page, err := parsePage(c, h.validator)
	if err != nil {
		return h.handleError(c, err)
	}

	courses, err := h.service.MyCourses(c.UserContext(), userIDFromContext(c), page)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, courses.Items, "courses retrieved", courses.Pagination)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.Created(c, "course created", course)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "course deleted", nil)
}

func (h *CourseHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrCourseForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	default:
		return respondDomainError(c, h.logger, err)
	}
}
