package dto

import (
	"time"

	"github.com/noah-isme/learnhub-api/internal/models"
)

// CourseCreateRequest describes the payload for creating a course.
type CourseCreateRequest struct {
	Title            string  `json:"title" validate:"required,max=255"`
	Description      string  `json:"description"`
	Category         string  `json:"category"`
	DurationHours    *int    `json:"duration_hours" validate:"omitempty,gte=0"`
	LearningOutcomes string  `json:"learning_outcomes"`
	ThumbnailURL     *string `json:"thumbnail_url" validate:"omitempty,url"`
}

// CourseUpdateRequest describes a partial course update.
type CourseUpdateRequest struct {
	Title            *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description      *string `json:"description"`
	Category         *string `json:"category" validate:"omitempty,min=1"`
	DurationHours    *int    `json:"duration_hours" validate:"omitempty,gte=0"`
	LearningOutcomes *string `json:"learning_outcomes"`
}

// CourseResponse is the serialized representation of a course.
type CourseResponse struct {
	ID               uint                 `json:"id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Category         string               `json:"category"`
	DurationHours    int                  `json:"duration_hours"`
	LearningOutcomes string               `json:"learning_outcomes"`
	ThumbnailURL     string               `json:"thumbnail_url"`
	Status           string               `json:"status"`
	EnrollmentCount  int                  `json:"enrollment_count"`
	Rating           float64              `json:"rating"`
	Instructor       *UserResponse        `json:"instructor,omitempty"`
	Assignments      []AssignmentResponse `json:"assignments,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// CourseListResponse wraps a page of courses.
type CourseListResponse struct {
	Items      []CourseResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	response := CourseResponse{
		ID:               model.ID,
		Title:            model.Title,
		Description:      model.Description,
		Category:         model.Category,
		DurationHours:    model.DurationHours,
		LearningOutcomes: model.LearningOutcomes,
		ThumbnailURL:     model.ThumbnailURL,
		Status:           model.Status,
		EnrollmentCount:  model.EnrollmentCount,
		Rating:           model.Rating,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}

	if model.Instructor.ID != 0 {
		instructor := NewUserResponse(model.Instructor)
		response.Instructor = &instructor
	}

	if len(model.Assignments) > 0 {
		response.Assignments = NewAssignmentResponseSlice(model.Assignments)
	}

	return response
}

// NewCourseResponseSlice converts course models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}

	return responses
}
