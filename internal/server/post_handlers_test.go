package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createPost(t *testing.T, token string, body fiber.Map) models.Post {
	t.Helper()
	status, raw := e.do(t, http.MethodPost, "/api/posts", token, body)
	require.Equal(t, http.StatusCreated, status, string(raw))
	return decode[models.Post](t, raw)
}

func TestCreatePost_Validation(t *testing.T) {
	env := newTestEnv(t, "")
	token, _ := env.registerAndLogin(t, "henry")

	tests := []struct {
		name    string
		body    fiber.Map
		message string
	}{
		{"Missing title", fiber.Map{"content": "body"}, "Title and content are required"},
		{"Blank content", fiber.Map{"title": "Title", "content": "   "}, "Title and content are required"},
		{"Title too long", fiber.Map{"title": strings.Repeat("a", 201), "content": "body"}, "Title too long (max 200 characters)"},
		{"Unknown category", fiber.Map{"title": "Fractions", "content": "body", "categoryId": 999}, "Category not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPost, "/api/posts", token, tt.body)
			assert.Contains(t, []int{http.StatusBadRequest, http.StatusNotFound}, status, string(body))
			assert.Equal(t, tt.message, errorMessage(t, body))
		})
	}
}

func TestCreatePost_RequiresAuth(t *testing.T) {
	env := newTestEnv(t, "")
	status, _ := env.do(t, http.MethodPost, "/api/posts", "", fiber.Map{"title": "x", "content": "y"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCreatePost_DuplicateTitle(t *testing.T) {
	env := newTestEnv(t, "")
	token, _ := env.registerAndLogin(t, "irene")
	env.createPost(t, token, fiber.Map{"title": "Classroom Tips", "content": "one"})

	status, body := env.do(t, http.MethodPost, "/api/posts", token, fiber.Map{"title": "classroom   tips!", "content": "two"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Post with this title already exists", errorMessage(t, body))
}

func TestCreatePost_WithTaxonomy(t *testing.T) {
	env := newTestEnv(t, "")
	adminToken, _ := env.createAdmin(t)

	status, body := env.do(t, http.MethodPost, "/api/categories", adminToken, fiber.Map{"name": "Mathematics"})
	require.Equal(t, http.StatusCreated, status, string(body))
	category := decode[models.Category](t, body)
	assert.Equal(t, "mathematics", category.Slug)

	post := env.createPost(t, adminToken, fiber.Map{
		"title":      "Teaching Fractions",
		"content":    "Pizza slices work.",
		"category":  fmt.Sprint(category.ID),
		"tags":      []string{"Fractions", "Primary"},
		"published": true,
	})
	require.NotNil(t, post.Category)
	assert.Equal(t, "Mathematics", post.Category.Name)
	assert.Len(t, post.Tags, 2)

	status, body = env.do(t, http.MethodGet, "/api/posts?category=mathematics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[service.PostPage](t, body).Posts, 1)

	status, body = env.do(t, http.MethodGet, "/api/posts?tag=fractions", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[service.PostPage](t, body).Posts, 1)

	status, body = env.do(t, http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Tag](t, body), 2)
}

func TestPostCategoryField(t *testing.T) {
	env := newTestEnv(t, "")
	adminToken, _ := env.createAdmin(t)

	status, body := env.do(t, http.MethodPost, "/api/categories", adminToken, fiber.Map{"name": "Science"})
	require.Equal(t, http.StatusCreated, status, string(body))
	science := decode[models.Category](t, body)
	status, body = env.do(t, http.MethodPost, "/api/categories", adminToken, fiber.Map{"name": "History"})
	require.Equal(t, http.StatusCreated, status, string(body))
	history := decode[models.Category](t, body)

	post := env.createPost(t, adminToken, fiber.Map{"title": "Volcanoes", "content": "c", "category": science.ID})
	require.NotNil(t, post.CategoryID)
	assert.Equal(t, science.ID, *post.CategoryID)

	// categoryId is still accepted
	status, body = env.do(t, http.MethodPatch, "/api/posts/volcanoes", adminToken, fiber.Map{"categoryId": history.ID})
	require.Equal(t, http.StatusOK, status, string(body))
	updated := decode[models.Post](t, body)
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, history.ID, *updated.CategoryID)

	status, body = env.do(t, http.MethodPatch, "/api/posts/volcanoes", adminToken, fiber.Map{"category": 0})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Nil(t, decode[models.Post](t, body).CategoryID)
}

func TestGetPosts_PublishedOnlyAndPaginated(t *testing.T) {
	env := newTestEnv(t, "")
	token, _ := env.registerAndLogin(t, "jack")

	for i := 1; i <= 3; i++ {
		env.createPost(t, token, fiber.Map{"title": fmt.Sprintf("Lesson %d", i), "content": "c", "published": true})
	}
	env.createPost(t, token, fiber.Map{"title": "Unfinished", "content": "c"})

	status, body := env.do(t, http.MethodGet, "/api/posts?page=2&limit=2", "", nil)
	require.Equal(t, http.StatusOK, status)
	page := decode[service.PostPage](t, body)
	assert.Equal(t, service.Pagination{Page: 2, Limit: 2, Total: 3, Pages: 2}, page.Pagination)
	require.Len(t, page.Posts, 1)
	// newest first, so the oldest lands on the last page
	assert.Equal(t, "lesson-1", page.Posts[0].Slug)

	status, body = env.do(t, http.MethodGet, "/api/posts?search=unfinished", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[service.PostPage](t, body).Posts)
}

func TestGetPost_DraftVisibility(t *testing.T) {
	env := newTestEnv(t, "")
	author, _ := env.registerAndLogin(t, "kate")
	other, _ := env.registerAndLogin(t, "leo")
	admin, _ := env.createAdmin(t)
	env.createPost(t, author, fiber.Map{"title": "Draft Notes", "content": "wip"})

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"Anonymous", "", http.StatusNotFound},
		{"Other teacher", other, http.StatusNotFound},
		{"Author", author, http.StatusOK},
		{"Admin", admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := env.do(t, http.MethodGet, "/api/posts/draft-notes", tt.token, nil)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestGetPost_DraftPreviewFlagOff(t *testing.T) {
	env := newTestEnv(t, "draft_preview=off")
	author, _ := env.registerAndLogin(t, "mia")
	env.createPost(t, author, fiber.Map{"title": "Hidden Draft", "content": "wip"})

	status, _ := env.do(t, http.MethodGet, "/api/posts/hidden-draft", author, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdatePost_Permissions(t *testing.T) {
	env := newTestEnv(t, "")
	author, _ := env.registerAndLogin(t, "nina")
	other, _ := env.registerAndLogin(t, "oscar")
	admin, _ := env.createAdmin(t)
	env.createPost(t, author, fiber.Map{"title": "Science Fair", "content": "v1"})

	status, _ := env.do(t, http.MethodPatch, "/api/posts/science-fair", "", fiber.Map{"content": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodPatch, "/api/posts/science-fair", other, fiber.Map{"content": "x"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := env.do(t, http.MethodPatch, "/api/posts/science-fair", admin, fiber.Map{"content": "v2", "title": ""})
	require.Equal(t, http.StatusOK, status, string(body))
	updated := decode[models.Post](t, body)
	assert.Equal(t, "v2", updated.Content)
	// empty title is ignored and the slug never changes
	assert.Equal(t, "Science Fair", updated.Title)
	assert.Equal(t, "science-fair", updated.Slug)

	status, _ = env.do(t, http.MethodPatch, "/api/posts/no-such-post", author, fiber.Map{"content": "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t, "")
	author, _ := env.registerAndLogin(t, "paul")
	other, _ := env.registerAndLogin(t, "quinn")
	post := env.createPost(t, author, fiber.Map{"title": "Old News", "content": "c", "published": true})

	status, body := env.do(t, http.MethodPost, "/api/comments", other, fiber.Map{"content": "first", "postId": post.ID})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, _ = env.do(t, http.MethodDelete, "/api/posts/old-news", other, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = env.do(t, http.MethodDelete, "/api/posts/old-news", author, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Post deleted successfully", decode[map[string]string](t, body)["message"])

	status, _ = env.do(t, http.MethodGet, "/api/posts/old-news", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	var comments int64
	require.NoError(t, env.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	assert.Zero(t, comments)
}
