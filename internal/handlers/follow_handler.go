package handlers

import (
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler serves the follow model.
type FollowHandler struct {
	follows *services.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(follows *services.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.ToggleFollow)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// ToggleFollow follows :id, or unfollows if already following.
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	var req models.ActorRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c, req.UserID)
	if err != nil {
		return err
	}

	res, err := h.follows.ToggleFollow(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	msg := "User followed successfully"
	if !res.IsFollowing {
		msg = "User unfollowed successfully"
	}
	return success(c, msg, res)
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	page := pageParams(c)
	users, total, err := h.follows.Followers(c.Request().Context(), c.Param("id"), page)
	if err != nil {
		return err
	}
	return respondPage(c, "Followers retrieved successfully", users, "Followers", page, total)
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	page := pageParams(c)
	users, total, err := h.follows.Following(c.Request().Context(), c.Param("id"), page)
	if err != nil {
		return err
	}
	return respondPage(c, "Following retrieved successfully", users, "Following", page, total)
}
