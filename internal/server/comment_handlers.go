package server

import (
	"github.com/spw3bt3ch/Teachers-blog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/comments?postId=
// @Summary List a post's comments with replies
// @Tags comments
// @Produce json
// @Param postId query int true "Post ID"
// @Success 200 {object} object{comments=[]models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Router /comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := queryID(c, "postId")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// CreateComment handles POST /api/comments
// @Summary Comment or reply
// @Tags comments
// @Accept json
// @Produce json
// @Param request body object{content=string,postId=int,parentId=int} true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		Content  string  `json:"content"`
		PostID   flexID  `json:"postId"`
		ParentID *flexID `json:"parentId"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		Actor:    actor(c),
		PostID:   uint(req.PostID),
		ParentID: req.ParentID.ptr(),
		Content:  req.Content,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetReplies handles GET /api/comments/:id/replies
// @Summary List replies to a comment
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {array} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id}/replies [get]
func (s *Server) GetReplies(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	replies, err := s.commentService.ListReplies(c.UserContext(), commentID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(replies)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment and its replies
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), actor(c), commentID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
}
