package seed

import (
	"context"
	"testing"

	"github.com/spw3bt3ch/Teachers-blog/internal/database"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func count(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func TestRun_PopulatesDatabase(t *testing.T) {
	db := setupSeedDB(t)
	ctx := context.Background()

	sum, err := Run(ctx, db, Options{NumUsers: 6, NumPosts: 12, MaxComments: 3, SkipBcrypt: true, RandSeed: 42})
	require.NoError(t, err)

	assert.Equal(t, 6, sum.Users)
	assert.Equal(t, 12, sum.Posts)
	assert.Equal(t, len(models.DefaultCategories), sum.Categories)
	assert.Equal(t, len(models.PopularTags), sum.Tags)

	assert.Equal(t, int64(6), count(t, db, "users"))
	assert.Equal(t, int64(12), count(t, db, "posts"))
	assert.Equal(t, int64(sum.Comments+sum.Replies), count(t, db, "comments"))
	assert.Equal(t, int64(sum.Reactions), count(t, db, "reactions"))
	assert.Positive(t, count(t, db, "post_tags"))

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		assert.NotEmpty(t, p.Slug)
		assert.NotNil(t, p.CategoryID)
	}

	// replies hang off top-level comments only
	var nested int64
	require.NoError(t, db.Table("comments AS c").
		Joins("JOIN comments p ON p.id = c.parent_id").
		Where("p.parent_id IS NOT NULL").Count(&nested).Error)
	assert.Zero(t, nested)
}

func TestRun_CleanIsRepeatable(t *testing.T) {
	db := setupSeedDB(t)
	ctx := context.Background()
	opts := Options{NumUsers: 3, NumPosts: 4, MaxComments: 2, SkipBcrypt: true, ShouldClean: true, RandSeed: 7}

	_, err := Run(ctx, db, opts)
	require.NoError(t, err)
	_, err = Run(ctx, db, opts)
	require.NoError(t, err)

	assert.Equal(t, int64(3), count(t, db, "users"))
	assert.Equal(t, int64(4), count(t, db, "posts"))
	assert.Equal(t, int64(len(models.DefaultCategories)), count(t, db, "categories"))
}

func TestSeedTaxonomy_Idempotent(t *testing.T) {
	db := setupSeedDB(t)
	ctx := context.Background()
	s := NewSeeder(db, Options{SkipBcrypt: true})

	categories, tags, err := s.SeedTaxonomy(ctx)
	require.NoError(t, err)
	again, _, err := s.SeedTaxonomy(ctx)
	require.NoError(t, err)

	assert.Len(t, again, len(categories))
	assert.Len(t, tags, len(models.PopularTags))
	assert.Equal(t, "stem", categories[3].Slug)
	for _, c := range again {
		assert.NotZero(t, c.ID)
	}
}

func TestClearAll(t *testing.T) {
	db := setupSeedDB(t)
	ctx := context.Background()
	_, err := Run(ctx, db, Options{NumUsers: 2, NumPosts: 2, MaxComments: 1, SkipBcrypt: true, RandSeed: 1})
	require.NoError(t, err)

	require.NoError(t, NewSeeder(db, Options{}).ClearAll(ctx))
	for _, table := range clearOrder {
		assert.Zero(t, count(t, db, table), table)
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	db := setupSeedDB(t)
	sum, err := Run(context.Background(), db, Options{NumUsers: 4, NumPosts: 5, MaxComments: 2, SkipBcrypt: true, DryRun: true, ShouldClean: true, RandSeed: 3})
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Users)
	assert.Equal(t, 5, sum.Posts)
	for _, table := range clearOrder {
		assert.Zero(t, count(t, db, table), table)
	}
}

func TestSeedPosts_RequiresUsers(t *testing.T) {
	s := NewSeeder(nil, Options{DryRun: true})
	_, err := s.SeedPosts(context.Background(), nil, nil, nil)
	assert.Error(t, err)
}

func TestSummaryString(t *testing.T) {
	s := Summary{Users: 1, Categories: 2, Tags: 3, Posts: 4, Comments: 5, Replies: 6, Reactions: 7}
	assert.Equal(t, "1 users, 2 categories, 3 tags, 4 posts, 5 comments, 6 replies, 7 reactions", s.String())
}
