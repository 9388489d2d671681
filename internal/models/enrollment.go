package models

import (
	"time"

	"github.com/noah-isme/learnhub-api/internal/scoring"
)

const (
	// EnrollmentStatusActive indicates an in-progress enrollment.
	EnrollmentStatusActive = string(scoring.EnrollmentActive)
	// EnrollmentStatusCompleted indicates a finished course.
	EnrollmentStatusCompleted = string(scoring.EnrollmentCompleted)
)

// Enrollment links a student to a course and tracks completion.
type Enrollment struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	StudentID          uint       `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"student_id"`
	CourseID           uint       `gorm:"not null;uniqueIndex:idx_enrollment_student_course;index" json:"course_id"`
	Status             string     `gorm:"size:32;not null" json:"status"`
	ProgressPercentage int        `gorm:"not null;default:0" json:"progress_percentage"`
	CompletedAt        *time.Time `json:"completed_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Course             Course     `gorm:"constraint:OnDelete:CASCADE" json:"course"`
	Student            User       `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

// State exposes the progress fields for the scoring rules.
func (e Enrollment) State() scoring.EnrollmentState {
	return scoring.EnrollmentState{
		Status:             scoring.EnrollmentStatus(e.Status),
		ProgressPercentage: e.ProgressPercentage,
		CompletedAt:        e.CompletedAt,
	}
}

// Apply copies computed progress fields back onto the model.
func (e *Enrollment) Apply(state scoring.EnrollmentState) {
	e.Status = string(state.Status)
	e.ProgressPercentage = state.ProgressPercentage
	e.CompletedAt = state.CompletedAt
}
