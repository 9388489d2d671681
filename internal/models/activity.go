package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit entity types.
const (
	EntityGrade      = "grade"
	EntityEnrollment = "enrollment"
)

// ActivityLog is one audit entry. Entries for the same entity form its history, which is
// how regrades stay visible after the grade row is overwritten.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null;index" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null;index:idx_activity_entity" json:"entity_type"`
	EntityID   *uint             `gorm:"index:idx_activity_entity" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}
