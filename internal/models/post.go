package models

import "time"

// Post is a blog article. Slug is derived from the title at creation and never changes.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Slug       string    `gorm:"uniqueIndex;not null" json:"slug"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Excerpt    string    `gorm:"size:300" json:"excerpt,omitempty"`
	Published  bool      `gorm:"not null;default:false;index" json:"published"`
	Featured   bool      `gorm:"not null;default:false" json:"featured"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	Author     *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags       []Tag     `gorm:"many2many:post_tags;" json:"tags"`
	Views      int64     `gorm:"not null;default:0" json:"views"`
	// Reactions is not persisted; filled with per-type counts on detail reads
	Reactions map[ReactionType]int64 `gorm:"-" json:"reactions,omitempty"`
	CreatedAt time.Time              `gorm:"index" json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}
