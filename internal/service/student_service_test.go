package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/events"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/repository"
)

func newStudentServiceForTest(t *testing.T, db *gorm.DB, cache *redis.Client, now time.Time) StudentService {
	t.Helper()
	svc := NewStudentService(StudentRepositories{
		Users:       repository.NewUserRepository(db),
		Enrollments: repository.NewEnrollmentRepository(db),
		Assignments: repository.NewAssignmentRepository(db),
		Submissions: repository.NewSubmissionRepository(db),
		Grades:      repository.NewGradeRepository(db),
	}, cache, time.Minute, testLogger())
	svc.(*studentService).now = func() time.Time { return now }
	return svc
}

func gradeSubmission(t *testing.T, db *gorm.DB, graderID uint, submission models.Submission, score int, letter string) {
	t.Helper()
	grade := models.Grade{SubmissionID: submission.ID, GradedBy: graderID, Score: score, Letter: letter, GradedAt: time.Now()}
	require.NoError(t, db.Create(&grade).Error)
	require.NoError(t, db.Model(&models.Submission{}).Where("id = ?", submission.ID).Update("status", models.SubmissionStatusGraded).Error)
}

func TestStudentServiceDashboardCachesUntilEvent(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := setupServiceDB(t)
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	admin := seedUser(t, db, models.RoleAdmin, "head@example.com")
	student := seedUser(t, db, models.RoleStudent, "pupil@example.com")
	algebra := seedCourse(t, db, admin.ID, "Algebra")
	history := seedCourse(t, db, admin.ID, "History")

	require.NoError(t, db.Create(&models.Enrollment{StudentID: student.ID, CourseID: algebra.ID, Status: models.EnrollmentStatusActive}).Error)
	open := seedAssignment(t, db, algebra.ID, 100, now.Add(48*time.Hour))
	closed := seedAssignment(t, db, algebra.ID, 100, now.Add(-48*time.Hour))
	graded := seedAssignment(t, db, algebra.ID, 100, now.Add(24*time.Hour))

	for _, assignment := range []models.Assignment{open, closed} {
		pending := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Status: models.SubmissionStatusSubmitted, SubmittedAt: now}
		require.NoError(t, db.Create(&pending).Error)
	}

	submission := models.Submission{AssignmentID: graded.ID, StudentID: student.ID, Status: models.SubmissionStatusSubmitted, SubmittedAt: now}
	require.NoError(t, db.Create(&submission).Error)
	gradeSubmission(t, db, admin.ID, submission, 91, "A")

	svc := newStudentServiceForTest(t, db, client, now)
	ctx := context.Background()

	first, err := svc.Dashboard(ctx, student.ID)
	require.NoError(t, err)
	require.Equal(t, student.Email, first.User.Email)
	require.Equal(t, 1, first.EnrolledCourses)
	require.Equal(t, 0, first.CompletedCourses)
	require.Equal(t, 1, first.PendingAssignments)
	require.Len(t, first.RecentGrades, 1)
	require.Equal(t, "A", first.RecentGrades[0].Letter)
	require.True(t, mini.Exists(dashboardCacheKey(student.ID)))

	require.NoError(t, db.Create(&models.Enrollment{StudentID: student.ID, CourseID: history.ID, Status: models.EnrollmentStatusCompleted, ProgressPercentage: 100}).Error)

	cached, err := svc.Dashboard(ctx, student.ID)
	require.NoError(t, err)
	require.Equal(t, 1, cached.EnrolledCourses)

	svc.HandleEvent(ctx, events.Event{Type: events.EnrollmentCreated, StudentID: student.ID})
	require.False(t, mini.Exists(dashboardCacheKey(student.ID)))

	fresh, err := svc.Dashboard(ctx, student.ID)
	require.NoError(t, err)
	require.Equal(t, 2, fresh.EnrolledCourses)
	require.Equal(t, 1, fresh.CompletedCourses)
}

func TestStudentServiceDashboardWithoutCache(t *testing.T) {
	db := setupServiceDB(t)
	svc := newStudentServiceForTest(t, db, nil, time.Now())

	_, err := svc.Dashboard(context.Background(), 77)
	require.ErrorIs(t, err, ErrStudentNotFound)

	svc.HandleEvent(context.Background(), events.Event{StudentID: 77})
}

func TestStudentServiceAssignmentStats(t *testing.T) {
	db := setupServiceDB(t)
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	admin := seedUser(t, db, models.RoleAdmin, "stats-admin@example.com")
	student := seedUser(t, db, models.RoleStudent, "stats@example.com")
	course := seedCourse(t, db, admin.ID, "Physics")

	statuses := []string{models.SubmissionStatusSubmitted, models.SubmissionStatusLate, models.SubmissionStatusSubmitted, models.SubmissionStatusSubmitted}
	var submissions []models.Submission
	for i, status := range statuses {
		assignment := seedAssignment(t, db, course.ID, 100, now.Add(time.Duration(i+1)*time.Hour))
		submission := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Status: status, SubmittedAt: now}
		require.NoError(t, db.Create(&submission).Error)
		submissions = append(submissions, submission)
	}
	gradeSubmission(t, db, admin.ID, submissions[2], 80, "B")
	gradeSubmission(t, db, admin.ID, submissions[3], 95, "A")

	svc := newStudentServiceForTest(t, db, nil, now)
	stats, err := svc.AssignmentStats(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, 4, stats.TotalSubmitted)
	require.Equal(t, 2, stats.Graded)
	require.Equal(t, 1, stats.PendingGrade)
	require.Equal(t, 1, stats.LateSubmissions)
	require.NotNil(t, stats.AverageGrade)
	require.Equal(t, 87.5, *stats.AverageGrade)

	page, err := svc.Submissions(context.Background(), student.ID, dto.PageRequest{Page: 1, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	require.Equal(t, int64(4), page.Pagination.TotalItems)
	require.Equal(t, 2, page.Pagination.TotalPages)

	grades, err := svc.Grades(context.Background(), student.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, grades.Items, 2)
}

func TestStudentServiceCourseProgress(t *testing.T) {
	db := setupServiceDB(t)
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	admin := seedUser(t, db, models.RoleAdmin, "progress-admin@example.com")
	student := seedUser(t, db, models.RoleStudent, "progress@example.com")
	course := seedCourse(t, db, admin.ID, "Literature")
	svc := newStudentServiceForTest(t, db, nil, now)
	ctx := context.Background()

	_, err := svc.CourseProgress(ctx, student.ID, course.ID)
	require.ErrorIs(t, err, ErrNotEnrolled)

	require.NoError(t, db.Create(&models.Enrollment{StudentID: student.ID, CourseID: course.ID, Status: models.EnrollmentStatusActive, ProgressPercentage: 35}).Error)

	empty, err := svc.CourseProgress(ctx, student.ID, course.ID)
	require.NoError(t, err)
	require.Nil(t, empty.AverageGrade)
	require.Equal(t, 35, empty.Enrollment.ProgressPercentage)

	scores := []int{1, 1, 2}
	for i, score := range scores {
		assignment := seedAssignment(t, db, course.ID, 10, now.Add(time.Duration(i+1)*time.Hour))
		submission := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Status: models.SubmissionStatusSubmitted, SubmittedAt: now}
		require.NoError(t, db.Create(&submission).Error)
		gradeSubmission(t, db, admin.ID, submission, score, "F")
	}
	seedAssignment(t, db, course.ID, 10, now.Add(96*time.Hour))

	progress, err := svc.CourseProgress(ctx, student.ID, course.ID)
	require.NoError(t, err)
	require.Len(t, progress.Assignments, 4)
	require.NotNil(t, progress.AverageGrade)
	require.Equal(t, 1.33, *progress.AverageGrade)
	require.Equal(t, 35, progress.Enrollment.ProgressPercentage)

	upcoming, err := svc.UpcomingAssignments(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, upcoming, 4)
	require.True(t, upcoming[0].DueDate.Before(upcoming[3].DueDate))
}
