package database

import (
	"testing"

	modelspkg "github.com/spw3bt3ch/Teachers-blog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPersistentModels_IncludesActivity(t *testing.T) {
	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*modelspkg.Activity); ok {
			found = true
			break
		}
	}
	require.True(t, found, "PersistentModels should include Activity")
}

func TestPersistentModels_AutoMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	for _, table := range []string{"users", "categories", "tags", "posts", "post_tags", "comments", "reactions", "activities"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
	assert.True(t, db.Migrator().HasIndex(&modelspkg.Comment{}, "idx_comments_post_parent"))
	assert.True(t, db.Migrator().HasIndex(&modelspkg.Activity{}, "idx_activities_type_created"))
}
