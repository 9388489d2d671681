package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/repository"
)

// ErrAssignmentNotFound indicates the requested assignment does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentService exposes assignment management for instructors and listings for students.
type AssignmentService interface {
	Create(ctx context.Context, actor Actor, courseID uint, req dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	ListForStudent(ctx context.Context, courseID, studentID uint) ([]dto.AssignmentResponse, error)
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	courses   repository.CourseRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssignmentService builds an AssignmentService instance.
func NewAssignmentService(repo repository.AssignmentRepository, courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		courses:   courses,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "assignment_service").Logger(),
		now:       time.Now,
	}
}

func (s *assignmentService) Create(ctx context.Context, actor Actor, courseID uint, req dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AssignmentResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrCourseNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	if course.InstructorID != actor.ID {
		return dto.AssignmentResponse{}, ErrCourseForbidden
	}

	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	maxPoints := models.DefaultMaxPoints
	if req.MaxPoints != nil {
		maxPoints = *req.MaxPoints
	}

	assignment := models.Assignment{
		CourseID:     course.ID,
		Title:        strings.TrimSpace(req.Title),
		Description:  s.sanitizer.Sanitize(req.Description),
		Instructions: s.sanitizer.Sanitize(req.Instructions),
		MaxPoints:    maxPoints,
		DueDate:      dueDate.UTC(),
		Type:         req.Type,
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("course_id", course.ID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, actor Actor, id uint, req dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.authorize(ctx, actor, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if req.Title != nil {
		assignment.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		assignment.Description = s.sanitizer.Sanitize(*req.Description)
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.DueDate = dueDate.UTC()
	}
	if req.MaxPoints != nil {
		assignment.MaxPoints = *req.MaxPoints
	}
	assignment.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}
	return nil
}

func (s *assignmentService) ListForStudent(ctx context.Context, courseID, studentID uint) ([]dto.AssignmentResponse, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	assignments, err := s.repo.ListByCourseForStudent(ctx, courseID, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) authorize(ctx context.Context, actor Actor, id uint) (models.Assignment, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	course, err := s.courses.GetByID(ctx, assignment.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrCourseNotFound
		}
		return models.Assignment{}, err
	}
	if course.InstructorID != actor.ID {
		return models.Assignment{}, ErrCourseForbidden
	}

	return assignment, nil
}
