package models

import (
	"time"

	"github.com/noah-isme/learnhub-api/internal/scoring"
)

// Assignment types accepted on creation.
const (
	AssignmentTypeQuiz       = "quiz"
	AssignmentTypeAssignment = "assignment"
	AssignmentTypeProject    = "project"
	AssignmentTypeDiscussion = "discussion"
)

// DefaultMaxPoints is used when an assignment is created without a maximum.
const DefaultMaxPoints = 100

// Assignment is graded work attached to a course.
type Assignment struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	CourseID        uint         `gorm:"not null;index" json:"course_id"`
	Title           string       `gorm:"size:255;not null" json:"title"`
	Description     string       `gorm:"type:text" json:"description"`
	Instructions    string       `gorm:"type:text" json:"instructions"`
	MaxPoints       int          `gorm:"not null;default:100" json:"max_points"`
	DueDate         time.Time    `gorm:"not null;index" json:"due_date"`
	Type            string       `gorm:"size:32;not null" json:"type"`
	SubmissionCount int          `gorm:"not null;default:0" json:"submission_count"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Course          Course       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Submissions     []Submission `json:"submissions,omitempty"`
}

// Window exposes the fields the scoring rules need.
func (a Assignment) Window() scoring.AssignmentWindow {
	return scoring.AssignmentWindow{MaxPoints: a.MaxPoints, DueAt: a.DueDate}
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.Window().IsLate(reference)
}
