package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/categories
// @Summary List categories
// @Tags taxonomy
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.taxonomyService.ListCategories(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(categories)
}

// CreateCategory handles POST /api/categories (admin only)
// @Summary Create a category
// @Tags taxonomy
// @Accept json
// @Produce json
// @Param request body object{name=string,description=string} true "Category"
// @Success 201 {object} models.Category
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /categories [post]
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	category, err := s.taxonomyService.CreateCategory(c.UserContext(), actor(c), req.Name, req.Description)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// GetTags handles GET /api/tags
// @Summary List tags
// @Tags taxonomy
// @Produce json
// @Success 200 {array} models.Tag
// @Router /tags [get]
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.taxonomyService.ListTags(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(tags)
}
