package models

import "time"

// Lecture is a scheduled session that parents are invited to.
type Lecture struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CreatedBy   uint            `gorm:"not null;index" json:"created_by"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	ScheduledAt time.Time       `gorm:"not null" json:"scheduled_at"`
	ImageURL    string          `gorm:"size:512" json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Invites     []LectureInvite `json:"invites,omitempty"`
	Children    []Child         `json:"children,omitempty"`
}

// LectureInvite grants a parent email access to a lecture.
type LectureInvite struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LectureID   uint      `gorm:"not null;uniqueIndex:idx_invite_lecture_email" json:"lecture_id"`
	ParentEmail string    `gorm:"size:255;not null;uniqueIndex:idx_invite_lecture_email" json:"parent_email"`
	Token       string    `gorm:"column:invite_token;size:64;not null;uniqueIndex" json:"invite_token"`
	IsUsed      bool      `gorm:"not null;default:false" json:"is_used"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Lecture     *Lecture  `gorm:"constraint:OnDelete:CASCADE" json:"lecture,omitempty"`
}

// Child is a parent's child registered for a lecture.
type Child struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ParentID  uint      `gorm:"not null;uniqueIndex:idx_child_parent_lecture_name" json:"parent_id"`
	LectureID uint      `gorm:"not null;uniqueIndex:idx_child_parent_lecture_name" json:"lecture_id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_child_parent_lecture_name" json:"name"`
	Age       int       `gorm:"not null" json:"age"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
