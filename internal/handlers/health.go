package handlers

import (
	"github.com/labstack/echo/v4"
)

// HealthCheck reports liveness; it never touches storage.
func HealthCheck(c echo.Context) error {
	return success(c, "Service is healthy", map[string]string{
		"status":  "healthy",
		"service": "newsflash-api",
	})
}
