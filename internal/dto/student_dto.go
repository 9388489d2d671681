package dto

import (
	"time"

	"github.com/noah-isme/learnhub-api/internal/scoring"
)

// StudentDashboardResponse aggregates enrollment and grading state for a student.
type StudentDashboardResponse struct {
	User               UserResponse    `json:"user"`
	EnrolledCourses    int             `json:"enrolled_courses"`
	CompletedCourses   int             `json:"completed_courses"`
	PendingAssignments int             `json:"pending_assignments"`
	RecentGrades       []GradeResponse `json:"recent_grades"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// StudentProfileResponse returns the caller's account with enrollment counts.
type StudentProfileResponse struct {
	User             UserResponse `json:"user"`
	EnrolledCourses  int          `json:"enrolled_courses"`
	CompletedCourses int          `json:"completed_courses"`
}

// AssignmentStatsResponse exposes submission aggregates for a student.
type AssignmentStatsResponse = scoring.Stats

// CourseProgressResponse combines stored progress with per-assignment state.
type CourseProgressResponse struct {
	Enrollment   EnrollmentResponse   `json:"enrollment"`
	Assignments  []AssignmentResponse `json:"assignments"`
	AverageGrade *float64             `json:"average_grade"`
}
