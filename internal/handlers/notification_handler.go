package handlers

import (
	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/anonto42/newsflash/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor *models.UserCompact `json:"actor,omitempty"`
}

// enrich attaches the compact actor profile. Actors that no longer exist are
// left off rather than failing the listing.
func (h *NotificationHandler) enrich(c echo.Context, notifications []models.Notification) []EnrichedNotification {
	actorIDs := lo.Uniq(lo.FilterMap(notifications, func(n models.Notification, _ int) (string, bool) {
		return n.ActorID, n.ActorID != ""
	}))
	actors := map[string]models.UserCompact{}
	if len(actorIDs) > 0 {
		users, err := h.userRepository.GetUsersByIDs(c.Request().Context(), actorIDs)
		if err != nil {
			logger.Ctx(c.Request().Context()).Warn().Err(err).Msg("failed to load notification actors")
		}
		for i := range users {
			actors[users[i].ID] = users[i].ToCompact()
		}
	}

	enriched := make([]EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n}
		if actor, ok := actors[n.ActorID]; ok {
			enriched[i].Actor = &actor
		}
	}
	return enriched
}

// GetNotifications returns the actor's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	actor, err := actorID(c, "")
	if err != nil {
		return err
	}
	page := pageParams(c)
	notifications, total, err := h.notificationRepository.GetByRecipientID(c.Request().Context(), actor, page)
	if err != nil {
		return apperr.Wrap(err, "failed to list notifications")
	}
	return respondPage(c, "Notifications retrieved successfully", h.enrich(c, notifications), "Notifications", page, total)
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	actor, err := actorID(c, "")
	if err != nil {
		return err
	}
	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), actor)
	if err != nil {
		return apperr.Wrap(err, "failed to count notifications")
	}
	return success(c, "Unread count retrieved successfully", echo.Map{"count": count})
}

// MarkAsRead marks one of the actor's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	var req models.ActorRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c, req.UserID)
	if err != nil {
		return err
	}
	if err := h.notificationRepository.MarkAsRead(c.Request().Context(), c.Param("id"), actor); err != nil {
		return apperr.Wrap(err, "failed to mark notification read")
	}
	return success(c, "Notification marked as read", nil)
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	var req models.ActorRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c, req.UserID)
	if err != nil {
		return err
	}
	updated, err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), actor)
	if err != nil {
		return apperr.Wrap(err, "failed to mark notifications read")
	}
	return success(c, "All notifications marked as read", echo.Map{"updated": updated})
}
