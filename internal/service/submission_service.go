package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/events"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/observability"
	"github.com/noah-isme/learnhub-api/internal/repository"
	"github.com/noah-isme/learnhub-api/internal/scoring"
)

var (
	// ErrSubmissionNotFound indicates the submission does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrSubmissionForbidden indicates a student tried to read another student's submission.
	ErrSubmissionForbidden = errors.New("submission belongs to another student")
)

// SubmissionService coordinates the submission gate with persistence.
type SubmissionService interface {
	Submit(ctx context.Context, studentID, assignmentID uint, req dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Mine(ctx context.Context, studentID, assignmentID uint) (dto.SubmissionResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error)
	Update(ctx context.Context, studentID, id uint, req dto.SubmissionUpdateRequest) (dto.SubmissionResponse, error)
	ListForAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	repo        repository.SubmissionRepository
	assignments repository.AssignmentRepository
	publisher   events.Publisher
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService wires dependencies for submission handling.
func NewSubmissionService(repo repository.SubmissionRepository, assignments repository.AssignmentRepository, publisher events.Publisher, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		repo:        repo,
		assignments: assignments,
		publisher:   publisher,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/learnhub-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, studentID, assignmentID uint, req dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submissions.submit", trace.WithAttributes(
		attribute.Int64("submission.assignment_id", int64(assignmentID)),
		attribute.Int64("submission.student_id", int64(studentID)),
	))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "assignment_not_found")
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	var existing *scoring.SubmissionState
	current, err := s.repo.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	switch {
	case err == nil:
		state := current.State()
		existing = &state
	case !errors.Is(err, gorm.ErrRecordNotFound):
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	now := s.now()
	decision, err := scoring.Decide(assignment.Window(), existing, now)
	if err != nil {
		span.SetStatus(codes.Error, "duplicate_submission")
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       string(decision.Status),
		SubmittedAt:  now,
	}
	if req.Content != nil {
		submission.Content = s.sanitizer.Sanitize(*req.Content)
	}
	if req.FileURL != nil {
		submission.FileURL = strings.TrimSpace(*req.FileURL)
	}

	if err := s.repo.Create(ctx, &submission, decision.IncrementCounter); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			span.SetStatus(codes.Error, "duplicate_submission")
			return dto.SubmissionResponse{}, scoring.ErrDuplicateSubmission
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist_failed")
		return dto.SubmissionResponse{}, err
	}

	observability.Submissions().WithLabelValues(submission.Status).Inc()
	span.SetAttributes(attribute.String("submission.status", submission.Status))

	s.publish(ctx, events.Event{
		Type:      events.SubmissionCreated,
		StudentID: studentID,
		EntityID:  submission.ID,
		Data:      map[string]interface{}{"assignment_id": assignmentID, "status": submission.Status},
	})

	submission.Assignment = assignment
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Mine(ctx context.Context, studentID, assignmentID uint) (dto.SubmissionResponse, error) {
	submission, err := s.repo.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if !actor.IsAdmin() && submission.StudentID != actor.ID {
		return dto.SubmissionResponse{}, ErrSubmissionForbidden
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Update(ctx context.Context, studentID, id uint, req dto.SubmissionUpdateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.load(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := scoring.AuthorizeUpdate(submission.State(), studentID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if req.Content != nil {
		submission.Content = s.sanitizer.Sanitize(*req.Content)
	}
	if req.FileURL != nil {
		submission.FileURL = strings.TrimSpace(*req.FileURL)
	}
	submission.UpdatedAt = s.now()

	if err := s.repo.UpdateContent(ctx, &submission); err != nil {
		if errors.Is(err, repository.ErrSubmissionLocked) {
			return dto.SubmissionResponse{}, scoring.ErrUnauthorized
		}
		return dto.SubmissionResponse{}, err
	}

	s.publish(ctx, events.Event{Type: events.SubmissionUpdated, StudentID: studentID, EntityID: submission.ID})

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListForAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error) {
	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	submissions, _, err := s.repo.List(ctx, repository.SubmissionFilter{AssignmentID: &assignmentID})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) load(ctx context.Context, id uint) (models.Submission, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}
	return submission, nil
}

func (s *submissionService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.publisher, s.logger, event)
}

func publishEvent(ctx context.Context, publisher events.Publisher, logger zerolog.Logger, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event", event.Type).Msg("failed to publish event")
	}
}
