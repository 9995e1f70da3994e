package models

import "time"

// ReactionType is the kind of reaction a user leaves.
type ReactionType string

const (
	ReactionLike       ReactionType = "like"
	ReactionHelpful    ReactionType = "helpful"
	ReactionInsightful ReactionType = "insightful"
)

// Valid reports whether t is a known reaction type.
func (t ReactionType) Valid() bool {
	switch t {
	case ReactionLike, ReactionHelpful, ReactionInsightful:
		return true
	}
	return false
}

// Reaction targets exactly one of a post or a comment.
// A user holds at most one reaction per post and one per comment.
type Reaction struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Type      ReactionType `gorm:"type:varchar(20);not null" json:"type"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_reactions_user_post;uniqueIndex:idx_reactions_user_comment" json:"user_id"`
	PostID    *uint        `gorm:"uniqueIndex:idx_reactions_user_post" json:"post_id,omitempty"`
	CommentID *uint        `gorm:"uniqueIndex:idx_reactions_user_comment" json:"comment_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
