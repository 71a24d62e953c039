package handlers

import (
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.GET("/users/:id/posts", h.GetUserPosts)
}

// CreatePost publishes a newsflash to the requested audience.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c, req.UserID)
	if err != nil {
		return err
	}
	post, err := h.posts.Create(c.Request().Context(), actor, &req)
	if err != nil {
		return err
	}
	return created(c, "Post created successfully", post)
}

func (h *PostHandler) GetPost(c echo.Context) error {
	viewer, err := viewerID(c)
	if err != nil {
		return err
	}
	post, err := h.posts.Get(c.Request().Context(), c.Param("id"), viewer)
	if err != nil {
		return err
	}
	return success(c, "Post retrieved successfully", post)
}

func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c, req.UserID)
	if err != nil {
		return err
	}
	post, err := h.posts.Update(c.Request().Context(), c.Param("id"), actor, req.RawText)
	if err != nil {
		return err
	}
	return success(c, "Post updated successfully", post)
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	var req models.ActorRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c, req.UserID)
	if err != nil {
		return err
	}
	if err := h.posts.Delete(c.Request().Context(), c.Param("id"), actor); err != nil {
		return err
	}
	return success(c, "Post deleted successfully", nil)
}

// GetUserPosts lists :id's posts that the viewer may see.
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	viewer, err := viewerID(c)
	if err != nil {
		return err
	}
	page := pageParams(c)
	posts, total, err := h.posts.ByUser(c.Request().Context(), c.Param("id"), viewer, page)
	if err != nil {
		return err
	}
	return respondPage(c, "Posts retrieved successfully", posts, "Posts", page, total)
}
