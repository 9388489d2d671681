package models

import "time"

// Course status values.
const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

// Course groups assignments and enrollments under an instructor.
type Course struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	InstructorID     uint         `gorm:"not null;index" json:"instructor_id"`
	Title            string       `gorm:"size:255;not null" json:"title"`
	Description      string       `gorm:"type:text" json:"description"`
	Category         string       `gorm:"size:128;not null;default:General" json:"category"`
	DurationHours    int          `gorm:"not null;default:0" json:"duration_hours"`
	LearningOutcomes string       `gorm:"type:text" json:"learning_outcomes"`
	ThumbnailURL     string       `gorm:"size:512" json:"thumbnail_url"`
	Status           string       `gorm:"size:32;not null;default:published;index" json:"status"`
	EnrollmentCount  int          `gorm:"not null;default:0" json:"enrollment_count"`
	Rating           float64      `gorm:"type:decimal(3,2);not null;default:0" json:"rating"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	Instructor       User         `gorm:"foreignKey:InstructorID;constraint:OnDelete:CASCADE" json:"instructor"`
	Assignments      []Assignment `json:"assignments,omitempty"`
	Enrollments      []Enrollment `json:"enrollments,omitempty"`
}
