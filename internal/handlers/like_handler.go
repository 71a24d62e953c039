package handlers

import (
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	engagement *services.EngagementService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(engagement *services.EngagementService) *LikeHandler {
	return &LikeHandler{engagement: engagement}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
}

// ToggleLike likes the post, or removes the actor's like.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	var req models.ActorRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c, req.UserID)
	if err != nil {
		return err
	}
	res, err := h.engagement.ToggleLike(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	msg := "Post liked successfully"
	if !res.IsLiked {
		msg = "Post unliked successfully"
	}
	return success(c, msg, res)
}
