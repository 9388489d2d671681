package models

import (
	"time"

	"github.com/noah-isme/learnhub-api/internal/scoring"
)

const (
	// SubmissionStatusSubmitted indicates an on-time submission awaiting a grade.
	SubmissionStatusSubmitted = string(scoring.StatusSubmitted)
	// SubmissionStatusLate indicates a submission made after the due date.
	SubmissionStatusLate = string(scoring.StatusLate)
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded = string(scoring.StatusGraded)
)

// Submission is a student's single answer to an assignment.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"assignment_id"`
	StudentID    uint       `gorm:"not null;uniqueIndex:idx_submission_assignment_student;index" json:"student_id"`
	Content      string     `gorm:"type:text" json:"content"`
	FileURL      string     `gorm:"size:512" json:"file_url"`
	Status       string     `gorm:"size:32;not null" json:"status"`
	SubmittedAt  time.Time  `gorm:"not null" json:"submitted_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Assignment   Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student      User       `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Grade        *Grade     `gorm:"constraint:OnDelete:CASCADE" json:"grade"`
}

// IsGraded reports whether the submission has a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// State exposes the owner and status for the submission gate.
func (s Submission) State() scoring.SubmissionState {
	return scoring.SubmissionState{StudentID: s.StudentID, Status: scoring.Status(s.Status)}
}

// Record pairs the submission status with its grade score for aggregation.
func (s Submission) Record() scoring.SubmissionRecord {
	record := scoring.SubmissionRecord{Status: scoring.Status(s.Status)}
	if s.Grade != nil {
		score := s.Grade.Score
		record.Score = &score
	}
	return record
}
