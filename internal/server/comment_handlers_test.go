package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createComment(t *testing.T, token string, body fiber.Map) models.Comment {
	t.Helper()
	status, raw := e.do(t, http.MethodPost, "/api/comments", token, body)
	require.Equal(t, http.StatusCreated, status, string(raw))
	return decode[models.Comment](t, raw)
}

func TestCreateComment_Validation(t *testing.T) {
	env := newTestEnv(t, "")
	token, _ := env.registerAndLogin(t, "rosa")
	post := env.createPost(t, token, fiber.Map{"title": "Reading Week", "content": "c", "published": true})
	other := env.createPost(t, token, fiber.Map{"title": "Art Week", "content": "c", "published": true})
	top := env.createComment(t, token, fiber.Map{"content": "top", "postId": post.ID})
	reply := env.createComment(t, token, fiber.Map{"content": "reply", "postId": post.ID, "parentId": top.ID})

	tests := []struct {
		name    string
		body    fiber.Map
		status  int
		message string
	}{
		{"Missing content", fiber.Map{"postId": post.ID}, http.StatusBadRequest, "Content and postId are required"},
		{"Missing postId", fiber.Map{"content": "hi"}, http.StatusBadRequest, "Content and postId are required"},
		{"Unknown post", fiber.Map{"content": "hi", "postId": 9999}, http.StatusNotFound, "Post not found"},
		{"Unknown parent", fiber.Map{"content": "hi", "postId": post.ID, "parentId": 9999}, http.StatusNotFound, "Parent comment not found"},
		{"Parent on another post", fiber.Map{"content": "hi", "postId": other.ID, "parentId": top.ID}, http.StatusBadRequest, "Parent comment belongs to a different post"},
		{"Reply to a reply", fiber.Map{"content": "hi", "postId": post.ID, "parentId": reply.ID}, http.StatusBadRequest, "Cannot reply to a reply"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPost, "/api/comments", token, tt.body)
			assert.Equal(t, tt.status, status, string(body))
			assert.Equal(t, tt.message, errorMessage(t, body))
		})
	}

	status, _ := env.do(t, http.MethodPost, "/api/comments", "", fiber.Map{"content": "hi", "postId": post.ID})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGetComments(t *testing.T) {
	env := newTestEnv(t, "")
	token, _ := env.registerAndLogin(t, "sam")
	post := env.createPost(t, token, fiber.Map{"title": "Field Trip", "content": "c", "published": true})

	status, body := env.do(t, http.MethodGet, "/api/comments", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "postId is required", errorMessage(t, body))

	status, body = env.do(t, http.MethodGet, "/api/comments?postId=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid post ID", errorMessage(t, body))

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/comments?postId=%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"comments":[]}`, string(body))

	first := env.createComment(t, token, fiber.Map{"content": "first", "postId": post.ID})
	second := env.createComment(t, token, fiber.Map{"content": "second", "postId": post.ID})
	env.createComment(t, token, fiber.Map{"content": "r1", "postId": post.ID, "parentId": first.ID})
	env.createComment(t, token, fiber.Map{"content": "r2", "postId": post.ID, "parentId": first.ID})

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/comments?postId=%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, status)
	thread := decode[commentThread](t, body).Comments
	require.Len(t, thread, 2)
	// newest top-level first, replies oldest first
	assert.Equal(t, second.ID, thread[0].ID)
	assert.Empty(t, thread[0].Replies)
	assert.Equal(t, first.ID, thread[1].ID)
	require.Len(t, thread[1].Replies, 2)
	assert.Equal(t, "r1", thread[1].Replies[0].Content)
	assert.Equal(t, "r2", thread[1].Replies[1].Content)
	require.NotNil(t, thread[1].Author)
	assert.Equal(t, "sam", thread[1].Author.Username)
}

func TestGetReplies_UnknownComment(t *testing.T) {
	env := newTestEnv(t, "")
	status, _ := env.do(t, http.MethodGet, "/api/comments/12345/replies", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := env.do(t, http.MethodGet, "/api/comments/zero/replies", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid ID", errorMessage(t, body))
}

func TestDeleteComment(t *testing.T) {
	env := newTestEnv(t, "")
	author, _ := env.registerAndLogin(t, "tara")
	stranger, _ := env.registerAndLogin(t, "uma")
	post := env.createPost(t, author, fiber.Map{"title": "Parents Evening", "content": "c", "published": true})
	top := env.createComment(t, author, fiber.Map{"content": "top", "postId": post.ID})
	env.createComment(t, stranger, fiber.Map{"content": "reply", "postId": post.ID, "parentId": top.ID})

	path := fmt.Sprintf("/api/comments/%d", top.ID)
	status, _ := env.do(t, http.MethodDelete, path, stranger, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := env.do(t, http.MethodDelete, path, author, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var remaining int64
	require.NoError(t, env.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	status, _ = env.do(t, http.MethodDelete, path, author, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
