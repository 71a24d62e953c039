package config

import (
	"github.com/anonto42/newsflash/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func SetupMiddleware(e *echo.Echo) {
	e.Use(logger.EchoMiddleware(logger.L()))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
}
