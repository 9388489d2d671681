package dto

import (
	"time"

	"github.com/noah-isme/learnhub-api/internal/models"
)

// EnrollmentProgressRequest sets the progress of an enrollment.
type EnrollmentProgressRequest struct {
	ProgressPercentage *int `json:"progress_percentage" validate:"required,gte=0,lte=100"`
}

// EnrollmentResponse serializes an enrollment.
type EnrollmentResponse struct {
	ID                 uint            `json:"id"`
	StudentID          uint            `json:"student_id"`
	CourseID           uint            `json:"course_id"`
	Status             string          `json:"status"`
	ProgressPercentage int             `json:"progress_percentage"`
	CompletedAt        *time.Time      `json:"completed_at"`
	Course             *CourseResponse `json:"course,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// NewEnrollmentResponse converts a model into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	response := EnrollmentResponse{
		ID:                 model.ID,
		StudentID:          model.StudentID,
		CourseID:           model.CourseID,
		Status:             model.Status,
		ProgressPercentage: model.ProgressPercentage,
		CompletedAt:        model.CompletedAt,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}

	if model.Course.ID != 0 {
		course := NewCourseResponse(model.Course)
		response.Course = &course
	}

	return response
}

// NewEnrollmentResponseSlice converts enrollment models into DTOs.
func NewEnrollmentResponseSlice(enrollments []models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, NewEnrollmentResponse(enrollment))
	}

	return responses
}
