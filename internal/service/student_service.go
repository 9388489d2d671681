package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/events"
	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/observability"
	"github.com/noah-isme/learnhub-api/internal/repository"
	"github.com/noah-isme/learnhub-api/internal/scoring"
)

const (
	recentGradesLimit        = 5
	upcomingAssignmentsLimit = 10
)

var (
	// ErrStudentNotFound indicates the authenticated student account no longer exists.
	ErrStudentNotFound = errors.New("student not found")
	// ErrNotEnrolled indicates the student has no enrollment in the course.
	ErrNotEnrolled = errors.New("not enrolled in this course")
)

// StudentService serves the student's own views of progress and grades.
type StudentService interface {
	Dashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
	Profile(ctx context.Context, studentID uint) (dto.StudentProfileResponse, error)
	Submissions(ctx context.Context, studentID uint, page dto.PageRequest) (dto.SubmissionListResponse, error)
	Grades(ctx context.Context, studentID uint, page dto.PageRequest) (dto.GradeListResponse, error)
	UpcomingAssignments(ctx context.Context, studentID uint) ([]dto.AssignmentResponse, error)
	AssignmentStats(ctx context.Context, studentID uint) (dto.AssignmentStatsResponse, error)
	CourseProgress(ctx context.Context, studentID, courseID uint) (dto.CourseProgressResponse, error)
	// HandleEvent drops the cached dashboard of the student an event refers to.
	HandleEvent(ctx context.Context, event events.Event)
}

// StudentRepositories groups the stores the student views read from.
type StudentRepositories struct {
	Users       repository.UserRepository
	Enrollments repository.EnrollmentRepository
	Assignments repository.AssignmentRepository
	Submissions repository.SubmissionRepository
	Grades      repository.GradeRepository
}

type studentService struct {
	repos    StudentRepositories
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewStudentService builds the student view service. cache may be nil.
func NewStudentService(repos StudentRepositories, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StudentService {
	return &studentService{
		repos:    repos,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "student_service").Logger(),
		now:      time.Now,
	}
}

func dashboardCacheKey(studentID uint) string {
	return fmt.Sprintf("dashboard:student:%d", studentID)
}

func (s *studentService) Dashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := dashboardCacheKey(studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.DashboardCache().WithLabelValues("hit").Inc()
				s.logger.Debug().Uint("student_id", studentID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		observability.DashboardCache().WithLabelValues("miss").Inc()
	}

	user, err := s.user(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	enrolled, completed, err := s.enrollmentCounts(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	now := s.now()
	pending, err := s.repos.Submissions.CountPendingForStudent(ctx, studentID, now)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	recent, _, err := s.repos.Grades.List(ctx, repository.GradeFilter{
		StudentID: studentID,
		Page:      repository.Page{Page: 1, PageSize: recentGradesLimit},
	})
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := dto.StudentDashboardResponse{
		User:               dto.NewUserResponse(user),
		EnrolledCourses:    enrolled,
		CompletedCourses:   completed,
		PendingAssignments: int(pending),
		RecentGrades:       dto.NewGradeResponseSlice(recent),
		GeneratedAt:        now,
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *studentService) HandleEvent(ctx context.Context, event events.Event) {
	if s.cache == nil || event.StudentID == 0 {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(event.StudentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("event", event.Type).Uint("student_id", event.StudentID).Msg("failed to invalidate dashboard cache")
	}
}

func (s *studentService) Profile(ctx context.Context, studentID uint) (dto.StudentProfileResponse, error) {
	user, err := s.user(ctx, studentID)
	if err != nil {
		return dto.StudentProfileResponse{}, err
	}

	enrolled, completed, err := s.enrollmentCounts(ctx, studentID)
	if err != nil {
		return dto.StudentProfileResponse{}, err
	}

	return dto.StudentProfileResponse{
		User:             dto.NewUserResponse(user),
		EnrolledCourses:  enrolled,
		CompletedCourses: completed,
	}, nil
}

func (s *studentService) Submissions(ctx context.Context, studentID uint, page dto.PageRequest) (dto.SubmissionListResponse, error) {
	page = page.Normalize()
	submissions, total, err := s.repos.Submissions.List(ctx, repository.SubmissionFilter{
		StudentID: &studentID,
		Page:      repository.Page{Page: page.Page, PageSize: page.PageSize},
	})
	if err != nil {
		return dto.SubmissionListResponse{}, err
	}

	return dto.SubmissionListResponse{
		Items:      dto.NewSubmissionResponseSlice(submissions),
		Pagination: dto.NewPaginationMeta(page, total),
	}, nil
}

func (s *studentService) Grades(ctx context.Context, studentID uint, page dto.PageRequest) (dto.GradeListResponse, error) {
	page = page.Normalize()
	grades, total, err := s.repos.Grades.List(ctx, repository.GradeFilter{
		StudentID: studentID,
		Page:      repository.Page{Page: page.Page, PageSize: page.PageSize},
	})
	if err != nil {
		return dto.GradeListResponse{}, err
	}

	return dto.GradeListResponse{
		Items:      dto.NewGradeResponseSlice(grades),
		Pagination: dto.NewPaginationMeta(page, total),
	}, nil
}

func (s *studentService) UpcomingAssignments(ctx context.Context, studentID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repos.Assignments.ListUpcomingForStudent(ctx, studentID, s.now(), upcomingAssignmentsLimit)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *studentService) AssignmentStats(ctx context.Context, studentID uint) (dto.AssignmentStatsResponse, error) {
	submissions, err := s.repos.Submissions.ListRecords(ctx, studentID)
	if err != nil {
		return dto.AssignmentStatsResponse{}, err
	}

	records := make([]scoring.SubmissionRecord, 0, len(submissions))
	for _, submission := range submissions {
		records = append(records, submission.Record())
	}

	return scoring.StudentStats(records), nil
}

func (s *studentService) CourseProgress(ctx context.Context, studentID, courseID uint) (dto.CourseProgressResponse, error) {
	enrollment, err := s.repos.Enrollments.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseProgressResponse{}, ErrNotEnrolled
		}
		return dto.CourseProgressResponse{}, err
	}

	assignments, err := s.repos.Assignments.ListByCourseForStudent(ctx, courseID, studentID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}

	scores := make([]int, 0, len(assignments))
	for _, assignment := range assignments {
		for _, submission := range assignment.Submissions {
			if score, err := scoring.LookupGrade(submission.Record()); err == nil {
				scores = append(scores, score)
			}
		}
	}

	enrollment.Apply(scoring.CourseProgress(enrollment.State()))

	return dto.CourseProgressResponse{
		Enrollment:   dto.NewEnrollmentResponse(enrollment),
		Assignments:  dto.NewAssignmentResponseSlice(assignments),
		AverageGrade: scoring.CourseAverage(scores),
	}, nil
}

func (s *studentService) user(ctx context.Context, studentID uint) (models.User, error) {
	user, err := s.repos.Users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrStudentNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *studentService) enrollmentCounts(ctx context.Context, studentID uint) (int, int, error) {
	enrolled, err := s.repos.Enrollments.CountByStudent(ctx, studentID, "")
	if err != nil {
		return 0, 0, err
	}
	completed, err := s.repos.Enrollments.CountByStudent(ctx, studentID, models.EnrollmentStatusCompleted)
	if err != nil {
		return 0, 0, err
	}
	return int(enrolled), int(completed), nil
}
