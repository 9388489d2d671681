package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/learnhub-api/internal/middleware"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/service"
	"github.com/noah-isme/learnhub-api/internal/utils"
)

// StudentHandler serves the student self-service endpoints.
type StudentHandler struct {
	service   service.StudentService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(service service.StudentService, validator *validator.Validate, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register mounts the /student routes. Every route requires the student role.
func (h *StudentHandler) Register(router fiber.Router) {
	group := router.Group("/student", middleware.RequireRole(models.RoleStudent))

	group.Get("/dashboard", h.dashboard)
	group.Get("/profile", h.profile)
	group.Get("/submissions", h.submissions)
	group.Get("/grades", h.grades)
	group.Get("/upcoming-assignments", h.upcoming)
	group.Get("/assignment-stats", h.assignmentStats)
	group.Get("/course/:id/progress", h.courseProgress)
}

func (h *StudentHandler) dashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.Dashboard(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *StudentHandler) profile(c *fiber.Ctx) error {
	profile, err := h.service.Profile(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *StudentHandler) submissions(c *fiber.Ctx) error {
	page, err := parsePage(c, h.validator)
	if err != nil {
		return h.handleError(c, err)
	}

	submissions, err := h.service.Submissions(c.UserContext(), userIDFromContext(c), page)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, submissions.Items, "submissions retrieved", submissions.Pagination)
}

func (h *StudentHandler) grades(c *fiber.Ctx) error {
	page, err := parsePage(c, h.validator)
	if err != nil {
		return h.handleError(c, err)
	}

	grades, err := h.service.Grades(c.UserContext(), userIDFromContext(c), page)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, grades.Items, "grades retrieved", grades.Pagination)
}

func (h *StudentHandler) upcoming(c *fiber.Ctx) error {
	assignments, err := h.service.UpcomingAssignments(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "upcoming assignments retrieved", assignments)
}

func (h *StudentHandler) assignmentStats(c *fiber.Ctx) error {
	stats, err := h.service.AssignmentStats(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment stats retrieved", stats)
}

func (h *StudentHandler) courseProgress(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	progress, err := h.service.CourseProgress(c.UserContext(), userIDFromContext(c), courseID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "course progress retrieved", progress)
}

func (h *StudentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrNotEnrolled):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		return respondDomainError(c, h.logger, err)
	}
}
