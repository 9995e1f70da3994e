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

type reactionCounts struct {
	Reactions map[models.ReactionType]int64 `json:"reactions"`
}

func TestPostReactions(t *testing.T) {
	env := newTestEnv(t, "")
	author, _ := env.registerAndLogin(t, "cora")
	reader, _ := env.registerAndLogin(t, "dev")
	env.createPost(t, author, fiber.Map{"title": "Homework Policy", "content": "c", "published": true})

	status, body := env.do(t, http.MethodPost, "/api/posts/homework-policy/reactions", reader, fiber.Map{"type": "like"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, int64(1), decode[reactionCounts](t, body).Reactions[models.ReactionLike])

	// a second reaction from the same user replaces the first
	status, body = env.do(t, http.MethodPost, "/api/posts/homework-policy/reactions", reader, fiber.Map{"type": "helpful"})
	require.Equal(t, http.StatusOK, status, string(body))
	counts := decode[reactionCounts](t, body).Reactions
	assert.Zero(t, counts[models.ReactionLike])
	assert.Equal(t, int64(1), counts[models.ReactionHelpful])

	status, body = env.do(t, http.MethodGet, "/api/posts/homework-policy", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), decode[models.Post](t, body).Reactions[models.ReactionHelpful])

	status, body = env.do(t, http.MethodDelete, "/api/posts/homework-policy/reactions", reader, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Zero(t, decode[reactionCounts](t, body).Reactions[models.ReactionHelpful])

	status, _ = env.do(t, http.MethodPost, "/api/posts/homework-policy/reactions", reader, fiber.Map{"type": "angry"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/posts/homework-policy/reactions", "", fiber.Map{"type": "like"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCommentReactions(t *testing.T) {
	env := newTestEnv(t, "")
	token, _ := env.registerAndLogin(t, "eli")
	post := env.createPost(t, token, fiber.Map{"title": "Exam Prep", "content": "c", "published": true})
	comment := env.createComment(t, token, fiber.Map{"content": "good luck", "postId": post.ID})

	path := fmt.Sprintf("/api/comments/%d/reactions", comment.ID)
	status, body := env.do(t, http.MethodPost, path, token, fiber.Map{"type": "insightful"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, int64(1), decode[reactionCounts](t, body).Reactions[models.ReactionInsightful])

	status, body = env.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Empty(t, decode[reactionCounts](t, body).Reactions)

	status, _ = env.do(t, http.MethodPost, "/api/comments/999/reactions", token, fiber.Map{"type": "like"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestReactions_FeatureFlagOff(t *testing.T) {
	env := newTestEnv(t, "reactions=off")
	token, _ := env.registerAndLogin(t, "fay")
	env.createPost(t, token, fiber.Map{"title": "Quiet Post", "content": "c", "published": true})

	status, body := env.do(t, http.MethodPost, "/api/posts/quiet-post/reactions", token, fiber.Map{"type": "like"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Feature not available", errorMessage(t, body))
}
