package models

import "time"

// Role values carried in the JWT role claim.
const (
	RoleAdmin   = "admin"
	RoleParent  = "parent"
	RoleStudent = "student"
)

// IsValidRole reports whether role is one of the known account roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleParent, RoleStudent:
		return true
	}
	return false
}

// User is an account that can sign in as an admin, a parent or a student.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:32;index;not null" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
