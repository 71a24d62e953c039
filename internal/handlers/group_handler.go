package handlers

import (
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// GroupHandler handles HTTP requests related to groups
type GroupHandler struct {
	groups *services.GroupService
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groups *services.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// RegisterGroupRoutes registers group-related routes
func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.POST("/groups", h.CreateGroup)
	g.GET("/groups", h.ListGroups)
	g.GET("/groups/:id", h.GetGroup)
	g.POST("/groups/:id/invites", h.Invite)
	g.POST("/groups/:id/invites/accept", h.AcceptInvite)
	g.POST("/groups/:id/invites/decline", h.DeclineInvite)
	g.POST("/groups/:id/leave", h.Leave)
	g.POST("/groups/:id/transfer", h.TransferOwnership)
	g.DELETE("/groups/:id/members/:userId", h.RemoveMember)
}

func (h *GroupHandler) CreateGroup(c echo.Context) error {
	var req models.CreateGroupRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c, req.UserID)
	if err != nil {
		return err
	}
	group, err := h.groups.Create(c.Request().Context(), actor, &req)
	if err != nil {
		return err
	}
	return created(c, "Group created successfully", group)
}

// ListGroups returns the groups the actor belongs to.
func (h *GroupHandler) ListGroups(c echo.Context) error {
	actor, err := actorID(c, "")
	if err != nil {
		return err
	}
	groups, err := h.groups.ListForUser(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return success(c, "Groups retrieved successfully", groups)
}

func (h *GroupHandler) GetGroup(c echo.Context) error {
	actor, err := actorID(c, "")
	if err != nil {
		return err
	}
	group, err := h.groups.Get(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return success(c, "Group retrieved successfully", group)
}

func (h *GroupHandler) Invite(c echo.Context) error {
	var req models.GroupInviteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c, req.UserID)
	if err != nil {
		return err
	}
	invite, err := h.groups.Invite(c.Request().Context(), c.Param("id"), actor, req.InviteeID)
	if err != nil {
		return err
	}
	return created(c, "Invitation sent successfully", invite)
}

func (h *GroupHandler) AcceptInvite(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}
	group, err := h.groups.AcceptInvite(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return success(c, "Invitation accepted", group)
}

func (h *GroupHandler) DeclineInvite(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}
	if err := h.groups.DeclineInvite(c.Request().Context(), c.Param("id"), actor); err != nil {
		return err
	}
	return success(c, "Invitation declined", nil)
}

// Leave removes the actor from the group. A sole owner leaving deletes it.
func (h *GroupHandler) Leave(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}
	deleted, err := h.groups.Leave(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	msg := "Left group successfully"
	if deleted {
		msg = "Group deleted"
	}
	return success(c, msg, echo.Map{"groupDeleted": deleted})
}

func (h *GroupHandler) TransferOwnership(c echo.Context) error {
	var req models.TransferOwnershipRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c, req.UserID)
	if err != nil {
		return err
	}
	group, err := h.groups.TransferOwnership(c.Request().Context(), c.Param("id"), actor, req.NewOwnerID)
	if err != nil {
		return err
	}
	return success(c, "Ownership transferred successfully", group)
}

func (h *GroupHandler) RemoveMember(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}
	if err := h.groups.RemoveMember(c.Request().Context(), c.Param("id"), actor, c.Param("userId")); err != nil {
		return err
	}
	return success(c, "Member removed successfully", nil)
}

func (h *GroupHandler) actor(c echo.Context) (string, error) {
	var req models.ActorRequest
	if err := bind(c, &req); err != nil {
		return "", err
	}
	return actorID(c, req.UserID)
}
