package handlers

import (
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	engagement *services.EngagementService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(engagement *services.EngagementService) *CommentHandler {
	return &CommentHandler{engagement: engagement}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetComments)
	g.DELETE("/posts/:id/comments/:commentId", h.DeleteComment)
}

type commentResponse struct {
	Comment       *models.Comment `json:"comment,omitempty"`
	CommentsCount int             `json:"commentsCount"`
}

func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c, req.UserID)
	if err != nil {
		return err
	}
	comment, count, err := h.engagement.AddComment(c.Request().Context(), c.Param("id"), actor, req.Text)
	if err != nil {
		return err
	}
	return created(c, "Comment added successfully", commentResponse{Comment: comment, CommentsCount: count})
}

func (h *CommentHandler) GetComments(c echo.Context) error {
	viewer, err := viewerID(c)
	if err != nil {
		return err
	}
	comments, err := h.engagement.Comments(c.Request().Context(), c.Param("id"), viewer)
	if err != nil {
		return err
	}
	return success(c, "Comments retrieved successfully", comments)
}

// DeleteComment removes one of the actor's own comments.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	var req models.ActorRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c, req.UserID)
	if err != nil {
		return err
	}
	count, err := h.engagement.DeleteComment(c.Request().Context(), c.Param("id"), c.Param("commentId"), actor)
	if err != nil {
		return err
	}
	return success(c, "Comment deleted successfully", commentResponse{CommentsCount: count})
}
