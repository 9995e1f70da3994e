package models

import "time"

// Comment is a top-level comment (ParentID nil) or a reply to a top-level comment.
// Replies are never stored on the parent; they are loaded by querying parent_id.
type Comment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	AuthorID  uint       `gorm:"not null;index" json:"author_id"`
	Author    *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	PostID    uint       `gorm:"not null;index:idx_comments_post_parent,priority:1" json:"post_id"`
	ParentID  *uint      `gorm:"index;index:idx_comments_post_parent,priority:2" json:"parent_id"`
	Replies   []*Comment `gorm:"-" json:"replies"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsReply reports whether the comment hangs off another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}
