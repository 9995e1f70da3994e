package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityType enumerates the audited user actions.
type ActivityType string

const (
	ActivityPostCreated    ActivityType = "post_created"
	ActivityPostUpdated    ActivityType = "post_updated"
	ActivityPostDeleted    ActivityType = "post_deleted"
	ActivityCommentCreated ActivityType = "comment_created"
	ActivityUserRegistered ActivityType = "user_registered"
	ActivityUserLogin      ActivityType = "user_login"
	ActivityUserUpdated    ActivityType = "user_updated"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityPostCreated, ActivityPostUpdated, ActivityPostDeleted,
		ActivityCommentCreated, ActivityUserRegistered, ActivityUserLogin, ActivityUserUpdated:
		return true
	}
	return false
}

// Activity is an append-only audit record. Nothing updates or deletes these rows.
// PostID and CommentID are plain references so records outlive deleted content.
type Activity struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Type      ActivityType      `gorm:"type:varchar(32);not null;index:idx_activities_type_created,priority:1" json:"type"`
	UserID    uint              `gorm:"not null;index:idx_activities_user_created,priority:1" json:"user_id"`
	User      *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PostID    *uint             `json:"post_id,omitempty"`
	CommentID *uint             `json:"comment_id,omitempty"`
	Details   string            `json:"details,omitempty"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"index;index:idx_activities_user_created,priority:2;index:idx_activities_type_created,priority:2" json:"created_at"`
}

// CountByKey is one row of a grouped count, shaped like the dashboard expects.
type CountByKey struct {
	Key   string `gorm:"column:group_key" json:"_id"`
	Count int64  `gorm:"column:total" json:"count"`
}
