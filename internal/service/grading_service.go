package service

import (
	"context"
	"errors"
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
	// ErrGradeNotFound indicates the grade does not exist.
	ErrGradeNotFound = errors.New("grade not found")
	// ErrAlreadyGraded indicates the submission already carries a grade; use the update operation instead.
	ErrAlreadyGraded = errors.New("submission already graded")
)

// GradingService records and reads grades.
type GradingService interface {
	Grade(ctx context.Context, actor Actor, submissionID uint, req dto.GradeCreateRequest) (dto.GradeResponse, error)
	Update(ctx context.Context, actor Actor, gradeID uint, req dto.GradeUpdateRequest) (dto.GradeResponse, error)
	ForSubmission(ctx context.Context, actor Actor, submissionID uint) (dto.GradeResponse, error)
	CourseGrades(ctx context.Context, actor Actor, courseID uint, studentID *uint) ([]dto.GradeResponse, error)
}

type gradingService struct {
	grades      repository.GradeRepository
	submissions repository.SubmissionRepository
	activity    ActivityRecorder
	publisher   events.Publisher
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(grades repository.GradeRepository, submissions repository.SubmissionRepository, activity ActivityRecorder, publisher events.Publisher, validate *validator.Validate, logger zerolog.Logger) GradingService {
	return &gradingService{
		grades:      grades,
		submissions: submissions,
		activity:    activity,
		publisher:   publisher,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/learnhub-api/internal/service/grading"),
		now:         time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, actor Actor, submissionID uint, req dto.GradeCreateRequest) (dto.GradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.create", trace.WithAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.GradeResponse{}, ErrSubmissionNotFound
		}
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.GradeResponse{}, err
	}

	if submission.Grade != nil {
		span.SetStatus(codes.Error, "already_graded")
		return dto.GradeResponse{}, ErrAlreadyGraded
	}

	result, err := scoring.Evaluate(*req.Score, submission.Assignment.MaxPoints)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation_failed")
		return dto.GradeResponse{}, err
	}

	now := s.now()
	grade := models.Grade{
		SubmissionID: submission.ID,
		GradedBy:     actor.ID,
		Score:        result.Score,
		Feedback:     s.sanitizer.Sanitize(req.Feedback),
		Letter:       string(result.Letter),
		GradedAt:     now,
	}

	if err := s.grades.CreateForSubmission(ctx, &grade); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			span.SetStatus(codes.Error, "already_graded")
			return dto.GradeResponse{}, ErrAlreadyGraded
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade_persist_failed")
		return dto.GradeResponse{}, err
	}

	observability.Grades().WithLabelValues("create", grade.Letter).Inc()
	span.SetAttributes(
		attribute.Int("grading.score", result.Score),
		attribute.Float64("grading.percentage", result.Percentage),
		attribute.String("grading.letter", grade.Letter),
	)

	record(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "grade.recorded",
		EntityType: models.EntityGrade,
		EntityID:   &grade.ID,
		Metadata: map[string]interface{}{
			"submission_id": submission.ID,
			"assignment_id": submission.AssignmentID,
			"student_id":    submission.StudentID,
			"score":         result.Score,
			"max_points":    result.MaxPoints,
			"letter":        grade.Letter,
		},
	})

	publishEvent(ctx, s.publisher, s.logger, events.Event{
		Type:      events.GradeRecorded,
		StudentID: submission.StudentID,
		EntityID:  grade.ID,
		Data:      map[string]interface{}{"submission_id": submission.ID, "letter": grade.Letter},
	})

	submission.Status = models.SubmissionStatusGraded
	grade.Submission = &submission
	return dto.NewGradeResponse(grade), nil
}

func (s *gradingService) Update(ctx context.Context, actor Actor, gradeID uint, req dto.GradeUpdateRequest) (dto.GradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.update", trace.WithAttributes(
		attribute.Int64("grading.grade_id", int64(gradeID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeResponse{}, err
	}

	grade, err := s.grades.GetByID(ctx, gradeID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "grade_not_found")
			return dto.GradeResponse{}, ErrGradeNotFound
		}
		return dto.GradeResponse{}, err
	}
	if grade.Submission == nil {
		return dto.GradeResponse{}, ErrSubmissionNotFound
	}

	previous := grade.Score
	score := grade.Score
	if req.Score != nil {
		score = *req.Score
	}

	result, err := scoring.Evaluate(score, grade.Submission.Assignment.MaxPoints)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation_failed")
		return dto.GradeResponse{}, err
	}

	grade.Score = result.Score
	grade.Letter = string(result.Letter)
	if req.Feedback != nil {
		grade.Feedback = s.sanitizer.Sanitize(*req.Feedback)
	}
	grade.GradedBy = actor.ID
	grade.UpdatedAt = s.now()

	if err := s.grades.Update(ctx, &grade); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade_persist_failed")
		return dto.GradeResponse{}, err
	}

	observability.Grades().WithLabelValues("update", grade.Letter).Inc()

	record(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "grade.updated",
		EntityType: models.EntityGrade,
		EntityID:   &grade.ID,
		Metadata: map[string]interface{}{
			"submission_id":  grade.SubmissionID,
			"previous_score": previous,
			"score":          grade.Score,
			"letter":         grade.Letter,
		},
	})

	publishEvent(ctx, s.publisher, s.logger, events.Event{
		Type:      events.GradeUpdated,
		StudentID: grade.Submission.StudentID,
		EntityID:  grade.ID,
		Data:      map[string]interface{}{"letter": grade.Letter},
	})

	return dto.NewGradeResponse(grade), nil
}

func (s *gradingService) ForSubmission(ctx context.Context, actor Actor, submissionID uint) (dto.GradeResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, ErrSubmissionNotFound
		}
		return dto.GradeResponse{}, err
	}

	if !actor.IsAdmin() && submission.StudentID != actor.ID {
		return dto.GradeResponse{}, ErrSubmissionForbidden
	}

	if _, err := scoring.LookupGrade(submission.Record()); err != nil {
		return dto.GradeResponse{}, err
	}

	grade := *submission.Grade
	grade.Submission = &submission
	return dto.NewGradeResponse(grade), nil
}

func (s *gradingService) CourseGrades(ctx context.Context, actor Actor, courseID uint, studentID *uint) ([]dto.GradeResponse, error) {
	target := actor.ID
	if studentID != nil && actor.IsAdmin() {
		target = *studentID
	}

	grades, _, err := s.grades.List(ctx, repository.GradeFilter{StudentID: target, CourseID: &courseID})
	if err != nil {
		return nil, err
	}

	return dto.NewGradeResponseSlice(grades), nil
}
