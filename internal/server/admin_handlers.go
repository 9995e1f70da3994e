package server

import (
	"github.com/spw3bt3ch/Teachers-blog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAdminStats handles GET /api/admin/stats
// @Summary Dashboard statistics
// @Tags admin
// @Produce json
// @Success 200 {object} service.DashboardStats
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/stats [get]
func (s *Server) GetAdminStats(c *fiber.Ctx) error {
	stats, err := s.adminService.Stats(c.UserContext(), actor(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(stats)
}

// GetAdminActivities handles GET /api/admin/activities
// @Summary Activity log
// @Tags admin
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(50)
// @Param type query string false "Activity type"
// @Param userId query int false "Acting user ID"
// @Success 200 {object} service.ActivityPage
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/activities [get]
func (s *Server) GetAdminActivities(c *fiber.Ctx) error {
	userID, err := queryID(c, "userId")
	if err != nil {
		return nil
	}

	page, err := s.adminService.ListActivities(c.UserContext(), actor(c), service.ListActivitiesInput{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 0),
		Type:   c.Query("type"),
		UserID: userID,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(page)
}
