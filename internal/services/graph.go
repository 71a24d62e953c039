// Package services holds the business rules: relationship transitions,
// audience resolution, engagement and groups. Services validate against the
// repositories, mutate through them, and enqueue notifications only after
// the mutation returned.
package services

import (
	"context"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/pkg/errors"
)

// Graph is what posting, feeds and notifications need from whichever
// relationship model the deployment runs.
type Graph interface {
	// Audience is everyone who receives userID's "friends" posts.
	Audience(ctx context.Context, userID string) ([]models.User, error)
	// IsConnected reports whether target may receive author's "friend" and
	// "friends" posts.
	IsConnected(ctx context.Context, authorID, targetID string) (bool, error)
	// ConnectionIDs lists the authors whose "friends" posts viewerID may read.
	ConnectionIDs(ctx context.Context, viewerID string) ([]string, error)
}

// edgeErr turns a lost compare-and-swap into a Conflict carrying msg.
func edgeErr(err error, msg, op string) error {
	if errors.Is(err, repositories.ErrStaleEdge) || errors.Is(err, repositories.ErrEdgeExists) {
		return apperr.Conflict("%s", msg)
	}
	return apperr.Wrap(err, op)
}

func usersOrEmpty(users []models.User) []models.User {
	if users == nil {
		return []models.User{}
	}
	return users
}
