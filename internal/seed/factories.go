// Package seed provides helpers to create demo data for the blog database.
// These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "password123"

var (
	subjects = []string{
		"Mathematics", "English", "Science", "History", "Geography", "Art",
		"Music", "Physical Education", "Computer Science", "Languages",
	}

	reactionTypes = []models.ReactionType{
		models.ReactionLike, models.ReactionHelpful, models.ReactionInsightful,
	}
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and by tests.
type Factory struct {
	db     *gorm.DB
	ctx    context.Context
	opts   Options
	faker  *gofakeit.Faker
	hashed string
	slugs  map[string]bool

	// userSeq keeps generated usernames and emails unique
	userSeq int
	// synthetic ID counter when running in DryRun mode
	nextID  uint
}

// NewFactory creates a Factory bound to db. A zero opts.RandSeed seeds from the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:     db,
		ctx:    context.Background(),
		opts:   opts,
		faker:  gofakeit.New(seed),
		slugs:  make(map[string]bool),
		nextID: 1000,
	}
}

func (f *Factory) password() string {
	if f.opts.SkipBcrypt {
		return DefaultPassword
	}
	if f.hashed == "" {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		f.hashed = string(hashed)
	}
	return f.hashed
}

// backdate returns a timestamp within the last MaxDays days.
func (f *Factory) backdate() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	days := f.faker.Number(0, maxDays-1)
	hours := f.faker.Number(0, 23)
	mins := f.faker.Number(0, 59)
	return time.Now().Add(-time.Duration(days)*24*time.Hour - time.Duration(hours)*time.Hour - time.Duration(mins)*time.Minute)
}

func (f *Factory) persist(value any, id *uint) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		return nil
	}
	return f.db.WithContext(f.ctx).Create(value).Error
}

// bind makes subsequent writes use ctx.
func (f *Factory) bind(ctx context.Context) *Factory {
	f.ctx = ctx
	return f
}

// pickUsers returns up to n distinct users in random order.
func (f *Factory) pickUsers(users []*models.User, n int) []*models.User {
	if n > len(users) {
		n = len(users)
	}
	picked := make([]*models.User, len(users))
	copy(picked, users)
	f.faker.ShuffleAnySlice(picked)
	return picked[:f.faker.Number(0, n)]
}

// pickTags returns up to n distinct tags.
func (f *Factory) pickTags(tags []models.Tag, n int) []models.Tag {
	if len(tags) == 0 {
		return nil
	}
	if n > len(tags) {
		n = len(tags)
	}
	picked := make([]models.Tag, len(tags))
	copy(picked, tags)
	f.faker.ShuffleAnySlice(picked)
	return picked[:f.faker.Number(1, n)]
}

// BuildUser constructs a teacher without saving it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	first, last := f.faker.FirstName(), f.faker.LastName()
	f.userSeq++
	base := validation.Slugify(first + " " + last)
	if len(base) > 24 {
		base = strings.TrimRight(base[:24], "-")
	}
	username := fmt.Sprintf("%s-%d", base, f.userSeq)
	user := &models.User{
		Name:       first + " " + last,
		Username:   username,
		Email:      username + "@school.test",
		Password:   f.password(),
		Role:       models.RoleTeacher,
		School:     f.faker.Company() + " School",
		Subject:    f.faker.RandomString(subjects),
		Experience: f.faker.Number(0, 35),
		Bio:        f.faker.Sentence(12),
		CreatedAt:  f.backdate(),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and persists a teacher.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.persist(user, &user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for author without saving it. Titles are
// de-duplicated so every slug is unique within one factory.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	title := strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 7)), ".")
	slug := validation.Slugify(title)
	for n := 2; f.slugs[slug]; n++ {
		slug = fmt.Sprintf("%s-%d", validation.Slugify(title), n)
	}
	f.slugs[slug] = true

	post := &models.Post{
		Title:     title,
		Slug:      slug,
		Content:   f.faker.Paragraph(f.faker.Number(2, 5), 4, 12, "\n\n"),
		Excerpt:   f.faker.Sentence(15),
		Published: f.faker.Number(1, 100) <= 80,
		Featured:  f.faker.Number(1, 100) <= 10,
		AuthorID:  author.ID,
		Views:     int64(f.faker.Number(0, 500)),
		CreatedAt: f.backdate(),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost builds and persists a post with the given tags.
func (f *Factory) CreatePost(author *models.User, tags []models.Tag, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)
	post.Tags = tags
	if err := f.persist(post, &post.ID); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by author on post. parent may be nil for a
// top-level comment.
func (f *Factory) CreateComment(author *models.User, post *models.Post, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		Content:   f.faker.Sentence(f.faker.Number(6, 20)),
		AuthorID:  author.ID,
		PostID:    post.ID,
		CreatedAt: post.CreatedAt.Add(time.Duration(f.faker.Number(1, 72)) * time.Hour),
	}
	if parent != nil {
		comment.ParentID = &parent.ID
		comment.CreatedAt = parent.CreatedAt.Add(time.Duration(f.faker.Number(1, 24)) * time.Hour)
	}
	if err := f.persist(comment, &comment.ID); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReaction persists a random reaction from user on exactly one of post or comment.
func (f *Factory) CreateReaction(user *models.User, postID, commentID *uint) (*models.Reaction, error) {
	reaction := &models.Reaction{
		Type:      reactionTypes[f.faker.Number(0, len(reactionTypes)-1)],
		UserID:    user.ID,
		PostID:    postID,
		CommentID: commentID,
	}
	if err := f.persist(reaction, &reaction.ID); err != nil {
		return nil, err
	}
	if f.opts.DryRun {
		log.Printf("[dry-run] CreateReaction: user=%d type=%s", user.ID, reaction.Type)
	}
	return reaction, nil
}
