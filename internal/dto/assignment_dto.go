package dto

import (
	"time"

	"github.com/noah-isme/learnhub-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment under a course.
type AssignmentCreateRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Instructions string `json:"instructions"`
	MaxPoints    *int   `json:"max_points" validate:"omitempty,gt=0"`
	DueDate      string `json:"due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Type         string `json:"type" validate:"required,oneof=quiz assignment project discussion"`
}

// AssignmentUpdateRequest describes the payload for updating an assignment.
type AssignmentUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	MaxPoints   *int    `json:"max_points" validate:"omitempty,gt=0"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID              uint                `json:"id"`
	CourseID        uint                `json:"course_id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Instructions    string              `json:"instructions"`
	MaxPoints       int                 `json:"max_points"`
	DueDate         time.Time           `json:"due_date"`
	Type            string              `json:"type"`
	SubmissionCount int                 `json:"submission_count"`
	MySubmission    *SubmissionResponse `json:"my_submission,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// AssignmentLite summarizes an assignment in submission and grade responses.
type AssignmentLite struct {
	ID        uint      `json:"id"`
	CourseID  uint      `json:"course_id"`
	Title     string    `json:"title"`
	MaxPoints int       `json:"max_points"`
	DueDate   time.Time `json:"due_date"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	response := AssignmentResponse{
		ID:              model.ID,
		CourseID:        model.CourseID,
		Title:           model.Title,
		Description:     model.Description,
		Instructions:    model.Instructions,
		MaxPoints:       model.MaxPoints,
		DueDate:         model.DueDate,
		Type:            model.Type,
		SubmissionCount: model.SubmissionCount,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}

	// Student listings preload only the caller's own submission.
	if len(model.Submissions) == 1 {
		submission := NewSubmissionResponse(model.Submissions[0])
		response.MySubmission = &submission
	}

	return response
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}

func newAssignmentLite(model models.Assignment) *AssignmentLite {
	if model.ID == 0 {
		return nil
	}
	return &AssignmentLite{
		ID:        model.ID,
		CourseID:  model.CourseID,
		Title:     model.Title,
		MaxPoints: model.MaxPoints,
		DueDate:   model.DueDate,
	}
}
