package dto

import (
	"time"

	"github.com/noah-isme/learnhub-api/internal/models"
)

// LectureCreateRequest is bound from a multipart form; the image is read separately.
type LectureCreateRequest struct {
	Title       string `form:"title" json:"title" validate:"required,max=255"`
	Description string `form:"description" json:"description"`
	ScheduledAt string `form:"scheduled_at" json:"scheduled_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// InviteCreateRequest invites a parent email to a lecture.
type InviteCreateRequest struct {
	ParentEmail string `json:"parent_email" validate:"required,email"`
}

// ChildCreateRequest registers a child for a lecture.
type ChildCreateRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Age  int    `json:"age" validate:"required,gte=1"`
}

// LectureResponse serializes a lecture.
type LectureResponse struct {
	ID          uint             `json:"id"`
	CreatedBy   uint             `json:"created_by"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ScheduledAt time.Time        `json:"scheduled_at"`
	ImageURL    string           `json:"image_url"`
	Invites     []InviteResponse `json:"invites,omitempty"`
	Children    []ChildResponse  `json:"children,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// InviteResponse serializes a lecture invite.
type InviteResponse struct {
	ID          uint             `json:"id"`
	LectureID   uint             `json:"lecture_id"`
	ParentEmail string           `json:"parent_email"`
	Token       string           `json:"invite_token"`
	IsUsed      bool             `json:"is_used"`
	Lecture     *LectureResponse `json:"lecture,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ChildResponse serializes a registered child.
type ChildResponse struct {
	ID        uint      `json:"id"`
	ParentID  uint      `json:"parent_id"`
	LectureID uint      `json:"lecture_id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
}

// NewLectureResponse converts a lecture with any preloaded invites and children.
func NewLectureResponse(model models.Lecture) LectureResponse {
	response := LectureResponse{
		ID:          model.ID,
		CreatedBy:   model.CreatedBy,
		Title:       model.Title,
		Description: model.Description,
		ScheduledAt: model.ScheduledAt,
		ImageURL:    model.ImageURL,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	for _, invite := range model.Invites {
		response.Invites = append(response.Invites, NewInviteResponse(invite))
	}
	for _, child := range model.Children {
		response.Children = append(response.Children, NewChildResponse(child))
	}

	return response
}

// NewLectureResponseSlice converts lecture models into DTOs.
func NewLectureResponseSlice(lectures []models.Lecture) []LectureResponse {
	responses := make([]LectureResponse, 0, len(lectures))
	for _, lecture := range lectures {
		responses = append(responses, NewLectureResponse(lecture))
	}
	return responses
}

// NewInviteResponse converts an invite model into a DTO.
func NewInviteResponse(model models.LectureInvite) InviteResponse {
	response := InviteResponse{
		ID:          model.ID,
		LectureID:   model.LectureID,
		ParentEmail: model.ParentEmail,
		Token:       model.Token,
		IsUsed:      model.IsUsed,
		CreatedAt:   model.CreatedAt,
	}
	if model.Lecture != nil {
		lecture := NewLectureResponse(*model.Lecture)
		response.Lecture = &lecture
	}
	return response
}

// NewInviteResponseSlice converts invite models into DTOs.
func NewInviteResponseSlice(invites []models.LectureInvite) []InviteResponse {
	responses := make([]InviteResponse, 0, len(invites))
	for _, invite := range invites {
		responses = append(responses, NewInviteResponse(invite))
	}
	return responses
}

// NewChildResponse converts a child model into a DTO.
func NewChildResponse(model models.Child) ChildResponse {
	return ChildResponse{
		ID:        model.ID,
		ParentID:  model.ParentID,
		LectureID: model.LectureID,
		Name:      model.Name,
		Age:       model.Age,
		CreatedAt: model.CreatedAt,
	}
}

// NewChildResponseSlice converts child models into DTOs.
func NewChildResponseSlice(children []models.Child) []ChildResponse {
	responses := make([]ChildResponse, 0, len(children))
	for _, child := range children {
		responses = append(responses, NewChildResponse(child))
	}
	return responses
}
