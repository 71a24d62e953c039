package newsflash

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req remoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "raw", req.RawText)
		assert.Equal(t, "Ann", req.AuthorName)
		assert.Equal(t, DefaultMaxLength, req.MaxLength)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(remoteResponse{Text: "  Ann breaks the news  "})
	}))
	defer srv.Close()

	g := NewRemote(srv.URL, time.Second)
	defer g.Close()

	got, err := g.Generate(context.Background(), "raw", "Ann", Options{})
	require.NoError(t, err)
	assert.Equal(t, "Ann breaks the news", got)
}

func TestRemoteFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "empty text",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"text":""}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			g := NewRemote(srv.URL, time.Second)
			defer g.Close()

			got, err := g.Generate(context.Background(), "raw text", "Ann", Options{})
			require.NoError(t, err)
			assert.Equal(t, Headline("raw text", "Ann", Options{}), got)
		})
	}
}
