package handlers

import (
	"context"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FriendshipHandler serves the request/accept model. In every route :id is
// the other user and the actor comes from the token or userId.
type FriendshipHandler struct {
	friendships *services.FriendshipService
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendships *services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendships: friendships}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/users/:id/friend-request", h.SendFriendRequest)
	g.POST("/users/:id/accept-friend", h.AcceptFriendRequest)
	g.POST("/users/:id/reject-friend", h.RejectFriendRequest)
	g.POST("/users/:id/cancel-friend-request", h.CancelFriendRequest)
	g.POST("/users/:id/unfriend", h.Unfriend)
	g.GET("/users/:id/friends", h.GetFriends)
	g.GET("/users/:id/friend-requests", h.GetFriendRequests)
	g.GET("/users/:id/friendship-status", h.GetFriendshipStatus)
}

func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}
	st, err := h.friendships.SendRequest(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, "Friend request sent successfully", st)
}

// AcceptFriendRequest accepts the request :id sent to the actor.
func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}
	st, err := h.friendships.Accept(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return success(c, "Friend request accepted successfully", st)
}

func (h *FriendshipHandler) RejectFriendRequest(c echo.Context) error {
	return h.transition(c, "Friend request rejected successfully", func(ctx context.Context, actor, other string) error {
		return h.friendships.Reject(ctx, other, actor)
	})
}

func (h *FriendshipHandler) CancelFriendRequest(c echo.Context) error {
	return h.transition(c, "Friend request cancelled successfully", func(ctx context.Context, actor, other string) error {
		return h.friendships.Cancel(ctx, other, actor)
	})
}

func (h *FriendshipHandler) Unfriend(c echo.Context) error {
	return h.transition(c, "Friend removed successfully", func(ctx context.Context, actor, other string) error {
		return h.friendships.Remove(ctx, actor, other)
	})
}

func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	page := pageParams(c)
	users, total, err := h.friendships.Friends(c.Request().Context(), c.Param("id"), page)
	if err != nil {
		return err
	}
	return respondPage(c, "Friends retrieved successfully", users, "Friends", page, total)
}

// GetFriendRequests lists :id's incoming requests, or with ?type=sent the
// requests :id is waiting on. Only :id may look.
func (h *FriendshipHandler) GetFriendRequests(c echo.Context) error {
	actor, err := actorID(c, "")
	if err != nil {
		return err
	}
	if actor != c.Param("id") {
		return apperr.Forbidden("you can only view your own friend requests")
	}

	page := pageParams(c)
	list := h.friendships.PendingRequests
	if c.QueryParam("type") == "sent" {
		list = h.friendships.SentRequests
	}
	users, total, err := list(c.Request().Context(), actor, page)
	if err != nil {
		return err
	}
	return respondPage(c, "Friend requests retrieved successfully", users, "Requests", page, total)
}

// GetFriendshipStatus describes the relationship between the actor and :id.
func (h *FriendshipHandler) GetFriendshipStatus(c echo.Context) error {
	actor, err := actorID(c, "")
	if err != nil {
		return err
	}
	st, err := h.friendships.Status(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, "Friendship status retrieved successfully", st)
}

func (h *FriendshipHandler) actor(c echo.Context) (string, error) {
	var req models.ActorRequest
	if err := bind(c, &req); err != nil {
		return "", err
	}
	return actorID(c, req.UserID)
}

func (h *FriendshipHandler) transition(c echo.Context, msg string, fn func(ctx context.Context, actor, other string) error) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}
	if err := fn(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return success(c, msg, nil)
}
