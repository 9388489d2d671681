package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/events"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/repository"
	"github.com/noah-isme/learnhub-api/internal/scoring"
)

func TestEnrollmentServiceLifecycle(t *testing.T) {
	db := setupServiceDB(t)
	instructor := seedUser(t, db, models.RoleAdmin, "prof@example.com")
	student := seedUser(t, db, models.RoleStudent, "kid@example.com")
	course := seedCourse(t, db, instructor.ID, "Geometry")

	activity := &memoryActivityRepo{}
	publisher := &recordingPublisher{}
	svc := NewEnrollmentService(
		repository.NewEnrollmentRepository(db),
		repository.NewCourseRepository(db),
		NewActivityService(activity, testLogger()),
		publisher,
		testValidator(),
		testLogger(),
	)
	completedAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.(*enrollmentService).now = func() time.Time { return completedAt }

	ctx := context.Background()
	actor := Actor{ID: student.ID, Role: models.RoleStudent}

	enrollment, err := svc.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	require.Equal(t, 0, enrollment.ProgressPercentage)
	require.NotNil(t, enrollment.Course)
	require.Equal(t, 1, enrollment.Course.EnrollmentCount)

	_, err = svc.Enroll(ctx, student.ID, course.ID)
	require.ErrorIs(t, err, scoring.ErrAlreadyEnrolled)

	var stored models.Course
	require.NoError(t, db.First(&stored, course.ID).Error)
	require.Equal(t, 1, stored.EnrollmentCount)

	progressed, err := svc.UpdateProgress(ctx, actor, enrollment.ID, dto.EnrollmentProgressRequest{ProgressPercentage: intPtr(40)})
	require.NoError(t, err)
	require.Equal(t, 40, progressed.ProgressPercentage)

	_, err = svc.UpdateProgress(ctx, actor, enrollment.ID, dto.EnrollmentProgressRequest{ProgressPercentage: intPtr(101)})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)

	_, err = svc.UpdateProgress(ctx, Actor{ID: instructor.ID, Role: models.RoleAdmin}, enrollment.ID, dto.EnrollmentProgressRequest{ProgressPercentage: intPtr(50)})
	require.ErrorIs(t, err, ErrEnrollmentForbidden)

	completed, err := svc.Complete(ctx, actor, enrollment.ID)
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusCompleted, completed.Status)
	require.Equal(t, 100, completed.ProgressPercentage)
	require.NotNil(t, completed.CompletedAt)
	require.True(t, completed.CompletedAt.Equal(completedAt))

	svc.(*enrollmentService).now = func() time.Time { return completedAt.Add(48 * time.Hour) }
	_, err = svc.Complete(ctx, actor, enrollment.ID)
	require.ErrorIs(t, err, scoring.ErrEnrollmentCompleted)

	_, err = svc.UpdateProgress(ctx, actor, enrollment.ID, dto.EnrollmentProgressRequest{ProgressPercentage: intPtr(60)})
	require.ErrorIs(t, err, scoring.ErrEnrollmentCompleted)

	listed, err := svc.List(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, 100, listed[0].ProgressPercentage)
	require.True(t, listed[0].CompletedAt.Equal(completedAt))
	require.NotNil(t, listed[0].Course.Instructor)

	require.Equal(t, []string{"enrollment.completed"}, activity.actions())
	require.Equal(t, []string{events.EnrollmentCreated, events.EnrollmentProgress, events.EnrollmentCompleted}, publisher.types())
}

func TestEnrollmentServiceUnknownCourse(t *testing.T) {
	db := setupServiceDB(t)
	student := seedUser(t, db, models.RoleStudent, "solo@example.com")
	svc := NewEnrollmentService(repository.NewEnrollmentRepository(db), repository.NewCourseRepository(db), nil, nil, testValidator(), testLogger())

	_, err := svc.Enroll(context.Background(), student.ID, 4242)
	require.ErrorIs(t, err, ErrCourseNotFound)

	_, err = svc.Complete(context.Background(), Actor{ID: student.ID}, 4242)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}
