package server

import (
	"github.com/spw3bt3ch/Teachers-blog/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and their state for the caller.
// Admin only, like the rest of /api/admin.
// @Summary Feature flags
// @Tags admin
// @Produce json
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	caller := actor(c)
	if err := policy.Authorize(caller, policy.Dashboard(), policy.ActionViewStats).Err(); err != nil {
		return respondErr(c, err)
	}

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(caller.ID),
	})
}
