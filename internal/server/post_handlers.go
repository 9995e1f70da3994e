package server

import (
	"github.com/spw3bt3ch/Teachers-blog/internal/featureflags"
	"github.com/spw3bt3ch/Teachers-blog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
// @Summary List published posts
// @Tags posts
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Param category query string false "Category slug"
// @Param tag query string false "Tag slug"
// @Param search query string false "Title or content search"
// @Param featured query bool false "Featured only"
// @Param authorId query int false "Author ID"
// @Success 200 {object} service.PostPage
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	authorID, err := queryID(c, "authorId")
	if err != nil {
		return nil
	}

	page, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 0),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Search:   c.Query("search"),
		Featured: c.QueryBool("featured", false),
		AuthorID: authorID,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:slug
// @Summary Get a post by slug
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	viewer := actor(c)
	if viewer != nil && !s.featureFlags.Enabled(featureflags.DraftPreview, viewer.ID) {
		viewer = nil
	}

	post, err := s.postService.GetPost(c.UserContext(), c.Params("slug"), viewer)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body object{title=string,content=string,excerpt=string,category=int,tags=[]string,featured=bool,published=bool} true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title      string   `json:"title"`
		Content    string   `json:"content"`
		Excerpt    string   `json:"excerpt"`
		Category   *flexID  `json:"category"`
		CategoryID *flexID  `json:"categoryId"`
		Tags       []string `json:"tags"`
		Featured   bool     `json:"featured"`
		Published  bool     `json:"published"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		Actor:      actor(c),
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CategoryID: firstID(req.Category, req.CategoryID).ptr(),
		Tags:       req.Tags,
		Featured:   req.Featured,
		Published:  req.Published,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PATCH /api/posts/:slug
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Param slug path string true "Post slug"
// @Param request body object{title=string,content=string,excerpt=string,category=int,tags=[]string,featured=bool,published=bool} true "Fields to change"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{slug} [patch]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req struct {
		Title      *string  `json:"title"`
		Content    *string  `json:"content"`
		Excerpt    *string  `json:"excerpt"`
		Category   *flexID  `json:"category"`
		CategoryID *flexID  `json:"categoryId"`
		Tags       []string `json:"tags"`
		Featured   *bool    `json:"featured"`
		Published  *bool    `json:"published"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	// an explicit category of 0 clears it
	var categoryID *uint
	if f := firstID(req.Category, req.CategoryID); f != nil {
		id := uint(*f)
		categoryID = &id
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		Actor:      actor(c),
		Slug:       c.Params("slug"),
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CategoryID: categoryID,
		Tags:       req.Tags,
		Featured:   req.Featured,
		Published:  req.Published,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:slug
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{slug} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.UserContext(), actor(c), c.Params("slug")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
