package dto

import (
	"time"

	"github.com/noah-isme/learnhub-api/internal/models"
	"github.com/noah-isme/learnhub-api/internal/scoring"
)

// GradeCreateRequest records a grade for a submission.
type GradeCreateRequest struct {
	Score    *int   `json:"score" validate:"required,gte=0"`
	Feedback string `json:"feedback"`
}

// GradeUpdateRequest changes the score or feedback of a grade.
type GradeUpdateRequest struct {
	Score    *int    `json:"score" validate:"omitempty,gte=0"`
	Feedback *string `json:"feedback"`
}

// GradeResponse serializes a grade with its derived percentage.
type GradeResponse struct {
	ID           uint            `json:"id"`
	SubmissionID uint            `json:"submission_id"`
	GradedBy     uint            `json:"graded_by"`
	Score        int             `json:"score"`
	Percentage   *float64        `json:"percentage,omitempty"`
	Letter       string          `json:"grade_letter"`
	Feedback     string          `json:"feedback"`
	GradedAt     time.Time       `json:"graded_at"`
	Assignment   *AssignmentLite `json:"assignment,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// GradeListResponse wraps a page of grades.
type GradeListResponse struct {
	Items      []GradeResponse `json:"items"`
	Pagination PaginationMeta  `json:"pagination"`
}

// NewGradeResponse converts a grade, using its preloaded submission assignment when present.
func NewGradeResponse(model models.Grade) GradeResponse {
	var assignment models.Assignment
	if model.Submission != nil {
		assignment = model.Submission.Assignment
	}
	return newGradeResponse(model, assignment)
}

// NewGradeResponseSlice converts grade models into DTOs.
func NewGradeResponseSlice(grades []models.Grade) []GradeResponse {
	responses := make([]GradeResponse, 0, len(grades))
	for _, grade := range grades {
		responses = append(responses, NewGradeResponse(grade))
	}

	return responses
}

func newGradeResponse(model models.Grade, assignment models.Assignment) GradeResponse {
	response := GradeResponse{
		ID:           model.ID,
		SubmissionID: model.SubmissionID,
		GradedBy:     model.GradedBy,
		Score:        model.Score,
		Letter:       model.Letter,
		Feedback:     model.Feedback,
		GradedAt:     model.GradedAt,
		Assignment:   newAssignmentLite(assignment),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if assignment.ID != 0 {
		if percentage, err := scoring.ComputePercentage(model.Score, assignment.MaxPoints); err == nil {
			response.Percentage = &percentage
		}
	}

	return response
}
