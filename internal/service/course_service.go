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

const defaultCourseCategory = "General"

var (
	// ErrCourseNotFound indicates the course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrCourseForbidden indicates the caller is not the course instructor.
	ErrCourseForbidden = errors.New("only the course instructor may modify this course")
)

// CourseService manages the course catalogue.
type CourseService interface {
	List(ctx context.Context, page dto.PageRequest) (dto.CourseListResponse, error)
	Browse(ctx context.Context, page dto.PageRequest) (dto.CourseListResponse, error)
	MyCourses(ctx context.Context, studentID uint, page dto.PageRequest) (dto.CourseListResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	Create(ctx context.Context, actor Actor, req dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.CourseUpdateRequest) (dto.CourseResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type courseService struct {
	repo      repository.CourseRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCourseService constructs the course service.
func NewCourseService(repo repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "course_service").Logger(),
		now:       time.Now,
	}
}

func (s *courseService) List(ctx context.Context, page dto.PageRequest) (dto.CourseListResponse, error) {
	return s.list(ctx, repository.CourseFilter{}, page)
}

func (s *courseService) Browse(ctx context.Context, page dto.PageRequest) (dto.CourseListResponse, error) {
	return s.list(ctx, repository.CourseFilter{Status: models.CourseStatusPublished}, page)
}

func (s *courseService) MyCourses(ctx context.Context, studentID uint, page dto.PageRequest) (dto.CourseListResponse, error) {
	return s.list(ctx, repository.CourseFilter{StudentID: &studentID}, page)
}

func (s *courseService) list(ctx context.Context, filter repository.CourseFilter, page dto.PageRequest) (dto.CourseListResponse, error) {
	page = page.Normalize()
	filter.Page = repository.Page{Page: page.Page, PageSize: page.PageSize}

	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.CourseListResponse{}, err
	}

	return dto.CourseListResponse{
		Items:      dto.NewCourseResponseSlice(courses),
		Pagination: dto.NewPaginationMeta(page, total),
	}, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.load(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Create(ctx context.Context, actor Actor, req dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CourseResponse{}, err
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = defaultCourseCategory
	}

	course := models.Course{
		InstructorID:     actor.ID,
		Title:            strings.TrimSpace(req.Title),
		Description:      s.sanitizer.Sanitize(req.Description),
		Category:         category,
		LearningOutcomes: s.sanitizer.Sanitize(req.LearningOutcomes),
		Status:           models.CourseStatusPublished,
	}
	if req.DurationHours != nil {
		course.DurationHours = *req.DurationHours
	}
	if req.ThumbnailURL != nil {
		course.ThumbnailURL = strings.TrimSpace(*req.ThumbnailURL)
	}

	if err := s.repo.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Uint("instructor_id", actor.ID).Msg("course created")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, actor Actor, id uint, req dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.load(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if course.InstructorID != actor.ID {
		return dto.CourseResponse{}, ErrCourseForbidden
	}

	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		course.Description = s.sanitizer.Sanitize(*req.Description)
	}
	if req.Category != nil {
		course.Category = strings.TrimSpace(*req.Category)
	}
	if req.DurationHours != nil {
		course.DurationHours = *req.DurationHours
	}
	if req.LearningOutcomes != nil {
		course.LearningOutcomes = s.sanitizer.Sanitize(*req.LearningOutcomes)
	}
	course.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Delete(ctx context.Context, actor Actor, id uint) error {
	course, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if course.InstructorID != actor.ID {
		return ErrCourseForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	s.logger.Info().Uint("course_id", id).Msg("course deleted")
	return nil
}

func (s *courseService) load(ctx context.Context, id uint) (models.Course, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}
