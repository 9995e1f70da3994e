package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMyProfile(t *testing.T) {
	env := newTestEnv(t, "")
	token, id := env.registerAndLogin(t, "victor")

	status, body := env.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	me := decode[models.User](t, body)
	assert.Equal(t, id, me.ID)
	assert.Equal(t, "victor@school.test", me.Email)
	assert.Equal(t, models.RoleTeacher, me.Role)
	assert.NotContains(t, string(body), "password")
}

func TestUpdateMyProfile(t *testing.T) {
	env := newTestEnv(t, "")
	token, _ := env.registerAndLogin(t, "wendy")

	status, body := env.do(t, http.MethodPatch, "/api/users/me", token, fiber.Map{
		"bio":        "Chemistry teacher, 12 years.",
		"school":     "Riverside Academy",
		"experience": 12,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	updated := decode[models.User](t, body)
	assert.Equal(t, "Chemistry teacher, 12 years.", updated.Bio)
	assert.Equal(t, "Riverside Academy", updated.School)
	assert.Equal(t, 12, updated.Experience)
	assert.Equal(t, "wendy", updated.Name)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"Blank name", fiber.Map{"name": "  "}},
		{"Bio too long", fiber.Map{"bio": strings.Repeat("b", 501)}},
		{"Negative experience", fiber.Map{"experience": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPatch, "/api/users/me", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, status, string(body))
		})
	}
}

func TestGetUserProfile_HidesEmail(t *testing.T) {
	env := newTestEnv(t, "")
	env.registerAndLogin(t, "xavier")

	status, body := env.do(t, http.MethodGet, "/api/users/Xavier", "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	profile := decode[map[string]any](t, body)
	assert.Equal(t, "xavier", profile["username"])
	assert.NotContains(t, profile, "email")

	status, body = env.do(t, http.MethodGet, "/api/users/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", errorMessage(t, body))
}
