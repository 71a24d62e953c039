package handlers

import (
	"strconv"
	"strings"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const defaultSearchLimit = 20

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterUserRoutes registers user profile-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
	g.PUT("/users/:id", h.UpdateUser)
	g.PUT("/users/:id/push-token", h.SetPushToken)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.Wrap(err, "failed to load user")
	}
	return success(c, "User retrieved successfully", user)
}

// UpdateUser lets a user edit their own profile.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	var req struct {
		UserID string `json:"userId"`
		models.UpdateUserRequest
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	actor, err := h.self(c, req.UserID)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, actor)
	if err != nil {
		return apperr.Wrap(err, "failed to load user")
	}
	if name := strings.TrimSpace(req.FullName); name != "" {
		user.FullName = name
	}
	if err := h.userRepository.UpdateProfile(ctx, user); err != nil {
		return apperr.Wrap(err, "failed to update user")
	}
	return success(c, "Profile updated successfully", user)
}

// SetPushToken registers (or, with an empty token, clears) the device that
// receives the user's push notifications.
func (h *UserHandler) SetPushToken(c echo.Context) error {
	var req struct {
		UserID string `json:"userId"`
		models.PushTokenRequest
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	actor, err := h.self(c, req.UserID)
	if err != nil {
		return err
	}
	if err := h.userRepository.SetPushToken(c.Request().Context(), actor, strings.TrimSpace(req.Token)); err != nil {
		return apperr.Wrap(err, "failed to update push token")
	}
	return success(c, "Push token updated successfully", nil)
}

// SearchUsers matches ?q= against names and emails.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return apperr.Validation("search query is required")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > repositories.MaxPageLimit {
		limit = defaultSearchLimit
	}
	users, err := h.userRepository.SearchUsers(c.Request().Context(), q, limit)
	if err != nil {
		return apperr.Wrap(err, "failed to search users")
	}
	if users == nil {
		users = []models.User{}
	}
	return success(c, "Users retrieved successfully", users)
}

// self resolves the actor and requires them to be the :id of the route.
func (h *UserHandler) self(c echo.Context, claimed string) (string, error) {
	actor, err := actorID(c, claimed)
	if err != nil {
		return "", err
	}
	if actor != c.Param("id") {
		return "", apperr.Forbidden("you can only update your own profile")
	}
	return actor, nil
}
