package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/events"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/repository"
	"github.com/noah-isme/learnhub-api/internal/scoring"
)

var (
	// ErrEnrollmentNotFound indicates the enrollment does not exist.
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	// ErrEnrollmentForbidden indicates the enrollment belongs to another student.
	ErrEnrollmentForbidden = errors.New("enrollment belongs to another student")
)

// EnrollmentService enrolls students and tracks their progress.
type EnrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID uint) (dto.EnrollmentResponse, error)
	List(ctx context.Context, studentID uint) ([]dto.EnrollmentResponse, error)
	UpdateProgress(ctx context.Context, actor Actor, id uint, req dto.EnrollmentProgressRequest) (dto.EnrollmentResponse, error)
	Complete(ctx context.Context, actor Actor, id uint) (dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	repo      repository.EnrollmentRepository
	courses   repository.CourseRepository
	activity  ActivityRecorder
	publisher events.Publisher
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo repository.EnrollmentRepository, courses repository.CourseRepository, activity ActivityRecorder, publisher events.Publisher, validate *validator.Validate, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		courses:   courses,
		activity:  activity,
		publisher: publisher,
		validator: validate,
		logger:    logger.With().Str("component", "enrollment_service").Logger(),
		now:       time.Now,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, studentID, courseID uint) (dto.EnrollmentResponse, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrCourseNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	_, err = s.repo.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.EnrollmentResponse{}, err
	}
	if err := scoring.DecideEnrollment(err == nil); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	enrollment := models.Enrollment{
		StudentID: studentID,
		CourseID:  courseID,
		Status:    models.EnrollmentStatusActive,
	}

	if err := s.repo.CreateAndCount(ctx, &enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.EnrollmentResponse{}, scoring.ErrAlreadyEnrolled
		}
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().Uint("student_id", studentID).Uint("course_id", courseID).Msg("student enrolled")

	publishEvent(ctx, s.publisher, s.logger, events.Event{
		Type:      events.EnrollmentCreated,
		StudentID: studentID,
		EntityID:  enrollment.ID,
		Data:      map[string]interface{}{"course_id": courseID},
	})

	course.EnrollmentCount++
	enrollment.Course = course
	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) List(ctx context.Context, studentID uint) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

func (s *enrollmentService) UpdateProgress(ctx context.Context, actor Actor, id uint, req dto.EnrollmentProgressRequest) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	enrollment, err := s.owned(ctx, actor, id)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	state, err := scoring.UpdateProgress(enrollment.State(), *req.ProgressPercentage)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	enrollment.Apply(state)
	enrollment.UpdatedAt = s.now()
	if err := s.repo.UpdateProgress(ctx, &enrollment); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	publishEvent(ctx, s.publisher, s.logger, events.Event{
		Type:      events.EnrollmentProgress,
		StudentID: enrollment.StudentID,
		EntityID:  enrollment.ID,
		Data:      map[string]interface{}{"progress_percentage": enrollment.ProgressPercentage},
	})

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) Complete(ctx context.Context, actor Actor, id uint) (dto.EnrollmentResponse, error) {
	enrollment, err := s.owned(ctx, actor, id)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	now := s.now()
	state, err := scoring.Complete(enrollment.State(), now)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	enrollment.Apply(state)
	enrollment.UpdatedAt = now
	if err := s.repo.UpdateProgress(ctx, &enrollment); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	record(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "enrollment.completed",
		EntityType: models.EntityEnrollment,
		EntityID:   &enrollment.ID,
		Metadata:   map[string]interface{}{"course_id": enrollment.CourseID},
	})

	publishEvent(ctx, s.publisher, s.logger, events.Event{
		Type:      events.EnrollmentCompleted,
		StudentID: enrollment.StudentID,
		EntityID:  enrollment.ID,
		Data:      map[string]interface{}{"course_id": enrollment.CourseID},
	})

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) owned(ctx context.Context, actor Actor, id uint) (models.Enrollment, error) {
	enrollment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Enrollment{}, ErrEnrollmentNotFound
		}
		return models.Enrollment{}, err
	}
	if enrollment.StudentID != actor.ID {
		return models.Enrollment{}, ErrEnrollmentForbidden
	}
	return enrollment, nil
}
