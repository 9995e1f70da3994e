package server

import (
	"github.com/gofiber/fiber/v2"
)

type reactionRequest struct {
	Type string `json:"type"`
}

// ReactToPost handles POST /api/posts/:slug/reactions
// @Summary React to a post
// @Tags reactions
// @Accept json
// @Produce json
// @Param slug path string true "Post slug"
// @Param request body object{type=string} true "Reaction"
// @Success 200 {object} object{reactions=map[string]int}
// @Security BearerAuth
// @Router /posts/{slug}/reactions [post]
func (s *Server) ReactToPost(c *fiber.Ctx) error {
	var req reactionRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	counts, err := s.reactionService.ReactToPost(c.UserContext(), actor(c), c.Params("slug"), req.Type)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"reactions": counts})
}

// RemovePostReaction handles DELETE /api/posts/:slug/reactions
// @Summary Remove a post reaction
// @Tags reactions
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} object{reactions=map[string]int}
// @Security BearerAuth
// @Router /posts/{slug}/reactions [delete]
func (s *Server) RemovePostReaction(c *fiber.Ctx) error {
	counts, err := s.reactionService.RemovePostReaction(c.UserContext(), actor(c), c.Params("slug"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"reactions": counts})
}

// ReactToComment handles POST /api/comments/:id/reactions
// @Summary React to a comment
// @Tags reactions
// @Accept json
// @Produce json
// @Param id path int true "Comment ID"
// @Param request body object{type=string} true "Reaction"
// @Success 200 {object} object{reactions=map[string]int}
// @Security BearerAuth
// @Router /comments/{id}/reactions [post]
func (s *Server) ReactToComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req reactionRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	counts, err := s.reactionService.ReactToComment(c.UserContext(), actor(c), commentID, req.Type)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"reactions": counts})
}

// RemoveCommentReaction handles DELETE /api/comments/:id/reactions
// @Summary Remove a comment reaction
// @Tags reactions
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} object{reactions=map[string]int}
// @Security BearerAuth
// @Router /comments/{id}/reactions [delete]
func (s *Server) RemoveCommentReaction(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	counts, err := s.reactionService.RemoveCommentReaction(c.UserContext(), actor(c), commentID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"reactions": counts})
}
