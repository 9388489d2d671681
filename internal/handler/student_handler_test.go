package handler_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learnhub-api/internal/dto"
	"github.com/noah-isme/learnhub-api/internal/models"
)

func TestStudentViews(t *testing.T) {
	world := setupWorld(t, worldOptions{})
	admin := world.seedUser(t, models.RoleAdmin, "admin@learnhub.test")
	student := world.seedUser(t, models.RoleStudent, "student@learnhub.test")

	courseID := world.createCourse(t, &admin, "Operating Systems")
	expect(t, world.do(t, http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/enroll", courseID), &student, nil), fiber.StatusCreated, nil)

	graded := world.createAssignment(t, &admin, courseID, 100, time.Now().Add(time.Hour))
	pending := world.createAssignment(t, &admin, courseID, 100, time.Now().Add(2*time.Hour))
	past := world.createAssignment(t, &admin, courseID, 100, time.Now().Add(-time.Hour))

	gradedSubmission := submitAs(t, world, &student, graded)
	expect(t, world.do(t, http.MethodPost, fmt.Sprintf("/api/v1/submissions/%d/grade", gradedSubmission), &admin, map[string]int{"score": 88}), fiber.StatusCreated, nil)
	submitAs(t, world, &student, pending)
	submitAs(t, world, &student, past)

	var dashboard dto.StudentDashboardResponse
	expect(t, world.do(t, http.MethodGet, "/api/v1/student/dashboard", &student, nil), fiber.StatusOK, &dashboard)
	require.Equal(t, student.ID, dashboard.User.ID)
	require.Equal(t, 1, dashboard.EnrolledCourses)
	require.Equal(t, 1, dashboard.PendingAssignments)
	require.Len(t, dashboard.RecentGrades, 1)

	var stats dto.AssignmentStatsResponse
	expect(t, world.do(t, http.MethodGet, "/api/v1/student/assignment-stats", &student, nil), fiber.StatusOK, &stats)
	require.Equal(t, 3, stats.TotalSubmitted)
	require.Equal(t, 1, stats.Graded)
	require.Equal(t, 1, stats.PendingGrade)
	require.Equal(t, 1, stats.LateSubmissions)
	require.NotNil(t, stats.AverageGrade)
	require.Equal(t, 88.0, *stats.AverageGrade)

	var progress dto.CourseProgressResponse
	expect(t, world.do(t, http.MethodGet, fmt.Sprintf("/api/v1/student/course/%d/progress", courseID), &student, nil), fiber.StatusOK, &progress)
	require.Len(t, progress.Assignments, 3)
	require.NotNil(t, progress.AverageGrade)
	require.Equal(t, 88.0, *progress.AverageGrade)

	var upcoming []dto.AssignmentResponse
	expect(t, world.do(t, http.MethodGet, "/api/v1/student/upcoming-assignments", &student, nil), fiber.StatusOK, &upcoming)
	for _, assignment := range upcoming {
		require.NotEqual(t, past, assignment.ID)
	}

	var submissions []dto.SubmissionResponse
	body := expect(t, world.do(t, http.MethodGet, "/api/v1/student/submissions?page_size=2", &student, nil), fiber.StatusOK, &submissions)
	require.Len(t, submissions, 2)
	require.Contains(t, string(body.Meta), `"total_items":3`)

	var grades []dto.GradeResponse
	expect(t, world.do(t, http.MethodGet, "/api/v1/student/grades", &student, nil), fiber.StatusOK, &grades)
	require.Len(t, grades, 1)

	var profile dto.StudentProfileResponse
	expect(t, world.do(t, http.MethodGet, "/api/v1/student/profile", &student, nil), fiber.StatusOK, &profile)
	require.Equal(t, "student@learnhub.test", profile.User.Email)
}

func TestStudentRoutesRejectOtherRoles(t *testing.T) {
	world := setupWorld(t, worldOptions{})
	admin := world.seedUser(t, models.RoleAdmin, "admin@learnhub.test")
	student := world.seedUser(t, models.RoleStudent, "student@learnhub.test")

	expect(t, world.do(t, http.MethodGet, "/api/v1/student/dashboard", &admin, nil), fiber.StatusForbidden, nil)
	expect(t, world.do(t, http.MethodGet, "/api/v1/student/dashboard", nil, nil), fiber.StatusUnauthorized, nil)
	expect(t, world.do(t, http.MethodGet, "/api/v1/student/course/12/progress", &student, nil), fiber.StatusNotFound, nil)
	expect(t, world.do(t, http.MethodGet, "/api/v1/student/submissions?page_size=500", &student, nil), fiber.StatusUnprocessableEntity, nil)
}
