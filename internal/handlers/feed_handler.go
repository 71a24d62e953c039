package handlers

import (
	"github.com/anonto42/newsflash/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the viewer's feed.
type FeedHandler struct {
	posts *services.PostService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(posts *services.PostService) *FeedHandler {
	return &FeedHandler{posts: posts}
}

// RegisterFeedRoutes registers feed routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/posts/feed", h.GetFeed)
}

// GetFeed returns every post the actor may see, newest first.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	actor, err := actorID(c, "")
	if err != nil {
		return err
	}
	page := pageParams(c)
	posts, total, err := h.posts.Feed(c.Request().Context(), actor, page)
	if err != nil {
		return err
	}
	return respondPage(c, "Feed retrieved successfully", posts, "Posts", page, total)
}
