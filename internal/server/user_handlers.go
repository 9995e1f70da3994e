package server

import (
	"github.com/spw3bt3ch/Teachers-blog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Current user's profile
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Security BearerAuth
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	me := actor(c)
	user, err := s.userService.GetUser(c.UserContext(), me.ID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PATCH /api/users/me
// @Summary Update the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{name=string,bio=string,school=string,subject=string,experience=int,image=string} true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [patch]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name       *string `json:"name"`
		Bio        *string `json:"bio"`
		School     *string `json:"school"`
		Subject    *string `json:"subject"`
		Experience *int    `json:"experience"`
		Image      *string `json:"image"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	me := actor(c)
	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		Actor:      me,
		UserID:     me.ID,
		Name:       req.Name,
		Bio:        req.Bio,
		School:     req.School,
		Subject:    req.Subject,
		Experience: req.Experience,
		Image:      req.Image,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:username
// @Summary Public profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetPublicProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}
