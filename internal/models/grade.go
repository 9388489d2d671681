package models

import "time"

// Grade is the evaluation of exactly one submission.
type Grade struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	SubmissionID uint        `gorm:"not null;uniqueIndex" json:"submission_id"`
	GradedBy     uint        `gorm:"not null;index" json:"graded_by"`
	Score        int         `gorm:"not null;default:0" json:"score"`
	Feedback     string      `gorm:"type:text" json:"feedback"`
	Letter       string      `gorm:"column:grade_letter;size:2" json:"grade_letter"`
	GradedAt     time.Time   `gorm:"not null" json:"graded_at"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Submission   *Submission `json:"submission,omitempty"`
}
