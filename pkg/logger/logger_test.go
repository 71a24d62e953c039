package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestCtxWithoutLoggerUsesGlobal(t *testing.T) {
	assert.Same(t, L(), Ctx(context.Background()))
}

func TestCtxReturnsStoredLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), zerolog.New(&buf).With().Str("component", "feed").Logger())

	Ctx(ctx).Info().Str("post_id", "p_1").Msg("post created")

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "feed", got[0]["component"])
	assert.Equal(t, "p_1", got[0]["post_id"])
	assert.Equal(t, "post created", got[0]["message"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
}

func TestEchoMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	e := echo.New()
	e.Use(EchoMiddleware(&base))
	e.GET("/feed", func(c echo.Context) error {
		c.Set(ContextKeyUserID, "u_1")
		Ctx(c.Request().Context()).Info().Msg("building feed")
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/teapot", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	t.Run("propagates request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/feed", nil)
		req.Header.Set(headerRequestID, "req-1")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "req-1", rec.Header().Get(headerRequestID))

		got := lines(t, &buf)
		require.Len(t, got, 2)
		assert.Equal(t, "building feed", got[0]["message"])
		assert.Equal(t, "req-1", got[0][FieldRequestID])
		assert.Equal(t, "request completed", got[1]["message"])
		assert.Equal(t, "/feed", got[1][FieldPath])
		assert.EqualValues(t, http.StatusNoContent, got[1][FieldStatus])
		assert.Equal(t, "u_1", got[1][FieldUserID])
	})

	t.Run("generates request id and logs error status", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		reqID := rec.Header().Get(headerRequestID)
		assert.NotEmpty(t, reqID)

		got := lines(t, &buf)
		require.Len(t, got, 1)
		assert.Equal(t, reqID, got[0][FieldRequestID])
		assert.EqualValues(t, http.StatusTeapot, got[0][FieldStatus])
		assert.NotContains(t, got[0], FieldUserID)
	})
}
