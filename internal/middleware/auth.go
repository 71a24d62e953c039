// Package middleware authenticates API requests.
package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/anonto42/newsflash/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// AuthConfig configures Authenticate.
type AuthConfig struct {
	// JWTSecret verifies tokens issued by /auth/signin and friends.
	JWTSecret string
	// Firebase, when set, also accepts Firebase ID tokens.
	Firebase *auth.Client
	// Users resolves a Firebase UID to the local user.
	Users repositories.UserRepository
	// Required rejects requests without an Authorization header. Otherwise
	// they pass through anonymous and handlers fall back to the claimed
	// userId.
	Required bool
}

// Authenticate resolves the bearer token to a user id and stores it under
// logger.ContextKeyUserID. A present but invalid token is always rejected.
func Authenticate(cfg AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				if cfg.Required {
					return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
				}
				return next(c)
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}
			token := parts[1]

			userID, err := userFromJWT(token, cfg.JWTSecret)
			if err != nil && cfg.Firebase != nil {
				userID, err = userFromFirebase(c.Request().Context(), cfg.Firebase, cfg.Users, token)
			}
			if err != nil {
				logger.Ctx(c.Request().Context()).Debug().Err(err).Msg("rejected bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(logger.ContextKeyUserID, userID)
			return next(c)
		}
	}
}
