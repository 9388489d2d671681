package dto

import (
	"time"

	"github.com/noah-isme/learnhub-api/internal/models"
)

// SubmissionCreateRequest describes the payload for submitting an assignment.
type SubmissionCreateRequest struct {
	Content *string `json:"content"`
	FileURL *string `json:"file_url" validate:"omitempty,url"`
}

// SubmissionUpdateRequest edits submission content before grading.
type SubmissionUpdateRequest struct {
	Content *string `json:"content"`
	FileURL *string `json:"file_url" validate:"omitempty,url"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint            `json:"id"`
	AssignmentID uint            `json:"assignment_id"`
	StudentID    uint            `json:"student_id"`
	Content      string          `json:"content"`
	FileURL      string          `json:"file_url"`
	Status       string          `json:"status"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	Grade        *GradeResponse  `json:"grade"`
	Assignment   *AssignmentLite `json:"assignment,omitempty"`
	Student      *StudentLite    `json:"student,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SubmissionListResponse wraps a page of submissions.
type SubmissionListResponse struct {
	Items      []SubmissionResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Content:      model.Content,
		FileURL:      model.FileURL,
		Status:       model.Status,
		SubmittedAt:  model.SubmittedAt,
		Assignment:   newAssignmentLite(model.Assignment),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Student.ID != 0 {
		response.Student = &StudentLite{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			Email: model.Student.Email,
		}
	}

	if model.Grade != nil {
		grade := newGradeResponse(*model.Grade, model.Assignment)
		response.Grade = &grade
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
