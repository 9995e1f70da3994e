// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// Role is the flat role string carried by every user.
type Role string

const (
	RoleTeacher   Role = "teacher"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// User represents a registered teacher, moderator or admin.
// Email and Username are stored lowercase so uniqueness is case-insensitive.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email,omitempty"`
	Username   string    `gorm:"uniqueIndex;not null" json:"username"`
	Name       string    `gorm:"not null" json:"name"`
	Password   string    `gorm:"not null" json:"-"`
	Role       Role      `gorm:"type:varchar(20);not null;default:teacher;index" json:"role,omitempty"`
	School     string    `json:"school,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Experience int       `gorm:"not null;default:0" json:"experience,omitempty"`
	Bio        string    `gorm:"size:500" json:"bio,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// NormalizeIdentity lowercases and trims an email or username.
func NormalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AuthorColumns are the public profile columns joined into posts and comments.
var AuthorColumns = []string{
	"id", "name", "username", "image", "role",
	"bio", "school", "subject", "experience", "created_at", "updated_at",
}
