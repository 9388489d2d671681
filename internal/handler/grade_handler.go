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

// GradeHandler exposes grading endpoints.
type GradeHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradeHandler constructs a grade handler.
func NewGradeHandler(service service.GradingService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service: service,
		logger:  logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register mounts grading routes.
func (h *GradeHandler) Register(router fiber.Router) {
	admin := middleware.RequireRole(models.RoleAdmin)
	anyMember := middleware.RequireRole(models.RoleStudent, models.RoleAdmin)

	router.Post("/submissions/:id/grade", admin, h.grade)
	router.Get("/submissions/:id/grade", anyMember, h.forSubmission)
	router.Put("/grades/:id", admin, h.update)
	router.Get("/courses/:id/grades", anyMember, h.courseGrades)
}

func (h *GradeHandler) grade(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GradeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	grade, err := h.service.Grade(c.UserContext(), actorFromContext(c), submissionID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("submission_id", submissionID).
		Str("letter", grade.Letter).
		Msg("submission graded")

	return utils.Created(c, "grade recorded", grade)
}

func (h *GradeHandler) update(c *fiber.Ctx) error {
	gradeID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GradeUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	grade, err := h.service.Update(c.UserContext(), actorFromContext(c), gradeID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grade updated", grade)
}

func (h *GradeHandler) forSubmission(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	grade, err := h.service.ForSubmission(c.UserContext(), actorFromContext(c), submissionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grade retrieved", grade)
}

func (h *GradeHandler) courseGrades(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	grades, err := h.service.CourseGrades(c.UserContext(), actorFromContext(c), courseID, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grades retrieved", grades)
}

func (h *GradeHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrGradeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "grade not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrAlreadyGraded):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSubmissionForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	default:
		return respondDomainError(c, h.logger, err)
	}
}
