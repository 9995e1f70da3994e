package models

import "time"

// Category groups posts by teaching area.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Tag is a free-form label attached to posts through post_tags.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultCategories is the category set offered to teachers.
var DefaultCategories = []string{
	"Primary Education",
	"Secondary Education",
	"Tertiary Education",
	"STEM",
	"Arts & Humanities",
	"Languages",
	"Professional Development",
	"Teaching Methods",
	"Classroom Management",
	"Curriculum Development",
	"Technology in Education",
	"Education Policy",
	"Special Education",
	"Assessment & Evaluation",
}

// PopularTags seeds the tag list.
var PopularTags = []string{
	"mathematics",
	"english",
	"science",
	"curriculum",
	"assessment",
	"technology",
	"methodology",
	"primary",
	"secondary",
	"resources",
}
