package services

import (
	"testing"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestEdgeErr(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		msg      string
		wantKind apperr.Kind
		wantMsg  string
	}{
		{"stale edge", repositories.ErrStaleEdge, "request already handled", apperr.KindConflict, "request already handled"},
		{"wrapped stale edge", errors.Wrap(repositories.ErrStaleEdge, "accept"), "request already handled", apperr.KindConflict, "request already handled"},
		{"existing edge keeps percent signs", repositories.ErrEdgeExists, "100% already friends", apperr.KindConflict, "100% already friends"},
		{"taxonomy error passes through", apperr.NotFound("user not found"), "unused", apperr.KindNotFound, "user not found"},
		{"driver failure", errors.New("connection reset"), "unused", apperr.KindInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := edgeErr(tt.err, tt.msg, "update friendship")
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
		})
	}
}
