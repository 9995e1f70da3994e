package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/spw3bt3ch/Teachers-blog/internal/middleware"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name           string
		body           fiber.Map
		expectedStatus int
		expectedError  string
	}{
		{
			name: "Success",
			body: fiber.Map{
				"email": "bob@school.test", "password": testPassword, "name": "Bob", "username": "bob",
				"school": "Lincoln High", "subject": "Physics",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing fields",
			body:           fiber.Map{"email": "carol@school.test", "password": testPassword},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Email, password, name, and username are required",
		},
		{
			name: "Duplicate email ignoring case",
			body: fiber.Map{
				"email": "BOB@school.test", "password": testPassword, "name": "Bobby", "username": "bobby",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "User already exists",
		},
		{
			name: "Duplicate username",
			body: fiber.Map{
				"email": "other@school.test", "password": testPassword, "name": "Bob Two", "username": "Bob",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "User already exists",
		},
		{
			name: "Short password",
			body: fiber.Map{
				"email": "dan@school.test", "password": "short", "name": "Dan", "username": "dan",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, tt.expectedStatus, status, string(body))
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorMessage(t, body))
			}
		})
	}
}

func TestRegister_ResponseOmitsPassword(t *testing.T) {
	env := newTestEnv(t, "")
	status, body := env.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email": "erin@school.test", "password": testPassword, "name": "Erin", "username": "erin",
		"school": "Oak Primary", "subject": "Music", "experience": 6,
	})
	require.Equal(t, http.StatusCreated, status)

	out := decode[struct {
		Message string         `json:"message"`
		User    map[string]any `json:"user"`
	}](t, body)
	assert.Equal(t, "User created successfully", out.Message)
	user := out.User
	assert.Equal(t, "erin@school.test", user["email"])
	assert.Equal(t, "erin", user["username"])
	assert.NotContains(t, user, "password")

	var stored models.User
	require.NoError(t, env.db.Where("username = ?", "erin").First(&stored).Error)
	assert.Equal(t, 6, stored.Experience)
	assert.Equal(t, "Oak Primary", stored.School)
}

func TestRegister_NegativeExperience(t *testing.T) {
	env := newTestEnv(t, "")
	status, body := env.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email": "gail@school.test", "password": testPassword, "name": "Gail", "username": "gail", "experience": -1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "experience must not be negative", errorMessage(t, body))
}

func TestRegister_InvalidBody(t *testing.T) {
	env := newTestEnv(t, "")
	req := `{"email":`
	status, body := env.doRaw(t, http.MethodPost, "/api/auth/register", req)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", errorMessage(t, body))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, "")
	env.registerAndLogin(t, "frank")

	tests := []struct {
		name           string
		email          string
		password       string
		expectedStatus int
	}{
		{"Success", "frank@school.test", testPassword, http.StatusOK},
		{"Email is case-insensitive", "FRANK@school.test", testPassword, http.StatusOK},
		{"Wrong password", "frank@school.test", "not-the-password", http.StatusUnauthorized},
		{"Unknown email", "ghost@school.test", testPassword, http.StatusUnauthorized},
		{"Empty", "", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
				"email": tt.email, "password": tt.password,
			})
			assert.Equal(t, tt.expectedStatus, status, string(body))
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.Equal(t, "Invalid email or password", errorMessage(t, body))
			}
		})
	}
}

func TestLogin_TokenCarriesRole(t *testing.T) {
	env := newTestEnv(t, "")
	token, adminID := env.createAdmin(t)

	claims, err := middleware.ParseToken(env.server.config.JWTSecret, token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, adminID, id)
	assert.Equal(t, "admin", claims.Role)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, "")

	expired, _, err := middleware.IssueToken(env.server.config.JWTSecret, 1, "old", "teacher", time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	foreign, _, err := middleware.IssueToken("some-other-secret", 1, "mallory", "admin", time.Now())
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		message string
	}{
		{"Missing", "", "Unauthorized"},
		{"Garbage", "not-a-jwt", "Invalid or expired token"},
		{"Expired", expired, "Invalid or expired token"},
		{"Wrong secret", foreign, "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodGet, "/api/users/me", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tt.message, errorMessage(t, body))
		})
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t, "")
	token, _ := env.registerAndLogin(t, "grace")

	status, _ := env.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	claims, err := middleware.ParseToken(env.server.config.JWTSecret, token)
	require.NoError(t, err)
	assert.True(t, env.redis.Exists(tokenBlacklistPrefix+claims.ID))
	assert.Greater(t, env.redis.TTL(tokenBlacklistPrefix+claims.ID), 24*time.Hour)

	status, body = env.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token has been revoked", errorMessage(t, body))

	// a fresh login still works
	fresh, _ := env.login(t, "grace@school.test")
	status, _ = env.do(t, http.MethodGet, "/api/users/me", fresh, nil)
	assert.Equal(t, http.StatusOK, status)
}
