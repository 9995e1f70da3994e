package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/validation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	MaxComments int // per post; replies are added on top
	ShouldClean bool
	SkipBcrypt  bool
	DryRun      bool
	MaxDays     int
	RandSeed    int64
}

// Summary counts what a seeding run created.
type Summary struct {
	Users      int
	Categories int
	Tags       int
	Posts      int
	Comments   int
	Replies    int
	Reactions  int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d users, %d categories, %d tags, %d posts, %d comments, %d replies, %d reactions",
		s.Users, s.Categories, s.Tags, s.Posts, s.Comments, s.Replies, s.Reactions)
}

// Seeder populates a database with demo teachers, posts and engagement.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder. Zero counts fall back to small defaults.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 10
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 30
	}
	if opts.MaxComments < 0 {
		opts.MaxComments = 0
	}
	return &Seeder{db: db, factory: NewFactory(db, opts), opts: opts}
}

// Factory exposes the seeder's entity factory.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// clearOrder lists tables children first so foreign keys never block a delete.
var clearOrder = []string{
	"reactions", "comments", "post_tags", "posts", "tags", "categories", "activities", "users",
}

// ClearAll deletes every seeded row.
func (s *Seeder) ClearAll(ctx context.Context) error {
	if s.opts.DryRun {
		log.Println("[dry-run] skipping cleanup")
		return nil
	}
	log.Println("🗑️  Clearing existing data...")
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range clearOrder {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedTaxonomy makes sure the default categories and popular tags exist.
func (s *Seeder) SeedTaxonomy(ctx context.Context) ([]models.Category, []models.Tag, error) {
	categories := make([]models.Category, 0, len(models.DefaultCategories))
	for _, name := range models.DefaultCategories {
		categories = append(categories, models.Category{Name: name, Slug: validation.Slugify(name)})
	}
	tags := make([]models.Tag, 0, len(models.PopularTags))
	for _, name := range models.PopularTags {
		tags = append(tags, models.Tag{Name: name, Slug: validation.Slugify(name)})
	}
	if s.opts.DryRun {
		for i := range categories {
			categories[i].ID = uint(i + 1)
		}
		for i := range tags {
			tags[i].ID = uint(i + 1)
		}
		return categories, tags, nil
	}

	db := s.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create categories: %w", err)
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tags).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create tags: %w", err)
	}
	// reload so rows that already existed carry their IDs
	if err := db.Order("id").Find(&categories).Error; err != nil {
		return nil, nil, err
	}
	if err := db.Order("id").Find(&tags).Error; err != nil {
		return nil, nil, err
	}
	return categories, tags, nil
}

// SeedUsers creates NumUsers teachers.
func (s *Seeder) SeedUsers(ctx context.Context) ([]*models.User, error) {
	f := s.factory.bind(ctx)
	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
		if (i+1)%100 == 0 {
			log.Printf("Created %d users...", i+1)
		}
	}
	return users, nil
}

// SeedPosts spreads NumPosts posts across users, each with a category and up to three tags.
func (s *Seeder) SeedPosts(ctx context.Context, users []*models.User, categories []models.Category, tags []models.Tag) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, errors.New("no users to author posts")
	}
	f := s.factory.bind(ctx)
	posts := make([]*models.Post, 0, s.opts.NumPosts)
	for i := 0; i < s.opts.NumPosts; i++ {
		author := users[f.faker.Number(0, len(users)-1)]
		post, err := f.CreatePost(author, f.pickTags(tags, 3), func(p *models.Post) {
			if len(categories) > 0 {
				id := categories[f.faker.Number(0, len(categories)-1)].ID
				p.CategoryID = &id
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
		if (i+1)%100 == 0 {
			log.Printf("Created %d posts...", i+1)
		}
	}
	return posts, nil
}

// SeedEngagement adds comments, one level of replies and reactions to posts.
// Every user reacts at most once per post and once per comment.
func (s *Seeder) SeedEngagement(ctx context.Context, users []*models.User, posts []*models.Post) (Summary, error) {
	var sum Summary
	if len(users) == 0 {
		return sum, nil
	}
	f := s.factory.bind(ctx)

	for _, post := range posts {
		if !post.Published {
			continue
		}
		n := f.faker.Number(0, s.opts.MaxComments)
		for i := 0; i < n; i++ {
			comment, err := f.CreateComment(users[f.faker.Number(0, len(users)-1)], post, nil)
			if err != nil {
				return sum, fmt.Errorf("failed to create comment: %w", err)
			}
			sum.Comments++

			for r := f.faker.Number(0, 2); r > 0; r-- {
				if _, err := f.CreateComment(users[f.faker.Number(0, len(users)-1)], post, comment); err != nil {
					return sum, fmt.Errorf("failed to create reply: %w", err)
				}
				sum.Replies++
			}

			for _, user := range f.pickUsers(users, 2) {
				if _, err := f.CreateReaction(user, nil, &comment.ID); err != nil {
					return sum, fmt.Errorf("failed to create comment reaction: %w", err)
				}
				sum.Reactions++
			}
		}

		for _, user := range f.pickUsers(users, len(users)/2) {
			if _, err := f.CreateReaction(user, &post.ID, nil); err != nil {
				return sum, fmt.Errorf("failed to create post reaction: %w", err)
			}
			sum.Reactions++
		}
	}
	return sum, nil
}

// Run executes a full seeding pass.
func Run(ctx context.Context, db *gorm.DB, opts Options) (Summary, error) {
	s := NewSeeder(db, opts)
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", s.opts.NumUsers, s.opts.NumPosts)

	if s.opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return Summary{}, err
		}
	}

	categories, tags, err := s.SeedTaxonomy(ctx)
	if err != nil {
		return Summary{}, err
	}
	log.Printf("✓ %d categories and %d tags available", len(categories), len(tags))

	users, err := s.SeedUsers(ctx)
	if err != nil {
		return Summary{}, err
	}
	log.Printf("✓ %d teachers created", len(users))

	posts, err := s.SeedPosts(ctx, users, categories, tags)
	if err != nil {
		return Summary{}, err
	}
	log.Printf("✓ %d posts created", len(posts))

	sum, err := s.SeedEngagement(ctx, users, posts)
	if err != nil {
		return sum, err
	}
	sum.Users = len(users)
	sum.Categories = len(categories)
	sum.Tags = len(tags)
	sum.Posts = len(posts)

	log.Printf("🎉 Database seeding completed: %s", sum)
	return sum, nil
}
