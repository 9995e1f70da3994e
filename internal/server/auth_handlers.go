package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spw3bt3ch/Teachers-blog/internal/middleware"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/service"

	"github.com/gofiber/fiber/v2"
)

const tokenBlacklistPrefix = "blacklist:"

// Register handles POST /api/auth/register
// @Summary Register a teacher
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string,name=string,username=string,school=string,subject=string,experience=int} true "Registration"
// @Success 201 {object} object{message=string,user=object{id=int,email=string,name=string,username=string}}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		Name       string `json:"name"`
		Username   string `json:"username"`
		School     string `json:"school"`
		Subject    string `json:"subject"`
		Experience *int   `json:"experience"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Username:   req.Username,
		School:     req.School,
		Subject:    req.Subject,
		Experience: req.Experience,
	})
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user": fiber.Map{
			"id":       user.ID,
			"email":    user.Email,
			"name":     user.Name,
			"username": user.Username,
		},
	})
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} object{token=string,user=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondErr(c, err)
	}

	token, _, err := middleware.IssueToken(s.config.JWTSecret, user.ID, user.Username, string(user.Role), time.Now())
	if err != nil {
		return respondErr(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/auth/logout. The token's ID is blacklisted in Redis
// until the token would have expired anyway.
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*middleware.Claims)
	if !ok || claims == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Unauthorized"))
	}

	if s.redis == nil {
		middleware.Logger.WarnContext(c.UserContext(), "logout without redis, token stays valid until expiry")
		return c.JSON(fiber.Map{"message": "Logged out successfully"})
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl > 0 && claims.ID != "" {
		if err := s.redis.Set(c.UserContext(), tokenBlacklistPrefix+claims.ID, "1", ttl).Err(); err != nil {
			return respondErr(c, models.NewInternalError(err))
		}
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// AuthRequired rejects requests without a valid, unrevoked bearer token.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := s.authenticate(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(err.Error()))
		}
		s.setIdentity(c, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present and
// otherwise lets the request through anonymously.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		if claims, err := s.authenticate(c); err == nil {
			s.setIdentity(c, claims)
		}
		return c.Next()
	}
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errAuthMissing authError = "Unauthorized"
	errAuthInvalid authError = "Invalid or expired token"
	errAuthRevoked authError = "Token has been revoked"
)

func (s *Server) authenticate(c *fiber.Ctx) (*middleware.Claims, error) {
	raw, err := middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		if errors.Is(err, middleware.ErrMissingToken) {
			return nil, errAuthMissing
		}
		return nil, errAuthInvalid
	}
	claims, err := middleware.ParseToken(s.config.JWTSecret, raw)
	if err != nil {
		return nil, errAuthInvalid
	}
	if s.isRevoked(c.UserContext(), claims.ID) {
		return nil, errAuthRevoked
	}
	return claims, nil
}

// isRevoked fails open when Redis is unavailable.
func (s *Server) isRevoked(ctx context.Context, jti string) bool {
	if s.redis == nil || jti == "" {
		return false
	}
	n, err := s.redis.Exists(ctx, tokenBlacklistPrefix+jti).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "token blacklist check failed", slog.String("error", err.Error()))
		return false
	}
	return n > 0
}

func (s *Server) setIdentity(c *fiber.Ctx, claims *middleware.Claims) {
	userID, _ := claims.UserID()
	c.Locals("userID", userID)
	c.Locals("userRole", models.Role(claims.Role))
	c.Locals("claims", claims)
	c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, userID))
}
