package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// Envelope is the body of every response.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Pagination echo.Map    `json:"pagination,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data, Timestamp: time.Now().UTC()})
}

func success(c echo.Context, message string, data interface{}) error {
	return respond(c, http.StatusOK, message, data)
}

func created(c echo.Context, message string, data interface{}) error {
	return respond(c, http.StatusCreated, message, data)
}

// respondPage renders one page of a listing. entity names the total key,
// e.g. "Posts" gives "totalPosts".
func respondPage(c echo.Context, message string, data interface{}, entity string, page repositories.Page, total int64) error {
	return c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Timestamp:  time.Now().UTC(),
		Pagination: pagination(entity, page, total),
	})
}

func pagination(entity string, page repositories.Page, total int64) echo.Map {
	totalPages := int((total + int64(page.Limit) - 1) / int64(page.Limit))
	return echo.Map{
		"page":           page.Page,
		"limit":          page.Limit,
		"total" + entity: total,
		"totalPages":     totalPages,
		"hasNextPage":    page.Page < totalPages,
		"hasPrevPage":    page.Page > 1,
	}
}

// pageParams reads ?page= and ?limit=, clamped into range.
func pageParams(c echo.Context) repositories.Page {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return repositories.NewPage(page, limit)
}
