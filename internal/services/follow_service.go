package services

import (
	"context"
	"fmt"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/notify"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/anonto42/newsflash/backend/pkg/logger"
)

const (
	ActionFollowed   = "followed"
	ActionUnfollowed = "unfollowed"
)

// FollowResult is the state after a toggle: the target's follower count and
// the actor's following count.
type FollowResult struct {
	IsFollowing    bool   `json:"isFollowing"`
	Action         string `json:"action"`
	FollowersCount int64  `json:"followersCount"`
	FollowingCount int64  `json:"followingCount"`
}

// FollowService runs the asymmetric follow model.
type FollowService struct {
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	notifier notify.Enqueuer
}

var _ Graph = (*FollowService)(nil)

func NewFollowService(users repositories.UserRepository, follows repositories.FollowRepository, notifier notify.Enqueuer) *FollowService {
	return &FollowService{users: users, follows: follows, notifier: notifier}
}

// ToggleFollow makes actorID follow targetID, or stops following if it
// already did.
func (s *FollowService) ToggleFollow(ctx context.Context, targetID, actorID string) (*FollowResult, error) {
	if targetID == actorID {
		return nil, apperr.SelfReference("cannot follow yourself")
	}

	toggle, err := s.follows.ToggleFollow(ctx, actorID, targetID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to toggle follow")
	}

	res := &FollowResult{
		IsFollowing:    toggle.Following,
		Action:         ActionUnfollowed,
		FollowersCount: toggle.Followee.FollowersCount,
		FollowingCount: toggle.Follower.FollowingCount,
	}
	if toggle.Following {
		res.Action = ActionFollowed
		s.notifier.Enqueue(notify.Task{
			Type:       models.NotificationFollow,
			ActorID:    actorID,
			Title:      "New follower",
			Body:       fmt.Sprintf("%s started following you", toggle.Follower.FullName),
			Data:       map[string]string{"type": models.NotificationFollow, "userId": actorID},
			Recipients: notify.RecipientsOf(toggle.Followee),
		})
	}

	logger.Ctx(ctx).Info().
		Str("actor_id", actorID).
		Str("target_id", targetID).
		Str("action", res.Action).
		Msg("follow toggled")
	return res, nil
}

func (s *FollowService) Followers(ctx context.Context, userID string, page repositories.Page) ([]models.User, int64, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, 0, apperr.Wrap(err, "failed to load user")
	}
	users, total, err := s.follows.GetFollowers(ctx, userID, page)
	if err != nil {
		return nil, 0, apperr.Wrap(err, "failed to list followers")
	}
	return usersOrEmpty(users), total, nil
}

func (s *FollowService) Following(ctx context.Context, userID string, page repositories.Page) ([]models.User, int64, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, 0, apperr.Wrap(err, "failed to load user")
	}
	users, total, err := s.follows.GetFollowing(ctx, userID, page)
	if err != nil {
		return nil, 0, apperr.Wrap(err, "failed to list following")
	}
	return usersOrEmpty(users), total, nil
}

// Audience of a follow-model author is their followers.
func (s *FollowService) Audience(ctx context.Context, userID string) ([]models.User, error) {
	followerIDs, err := s.follows.GetFollowerIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list followers")
	}
	if len(followerIDs) == 0 {
		return nil, nil
	}
	users, err := s.users.GetUsersByIDs(ctx, followerIDs)
	return users, apperr.Wrap(err, "failed to load followers")
}

// IsConnected reports whether targetID follows authorID.
func (s *FollowService) IsConnected(ctx context.Context, authorID, targetID string) (bool, error) {
	ok, err := s.follows.IsFollowing(ctx, targetID, authorID)
	return ok, apperr.Wrap(err, "failed to check follow")
}

// ConnectionIDs are the users viewerID follows.
func (s *FollowService) ConnectionIDs(ctx context.Context, viewerID string) ([]string, error) {
	followingIDs, err := s.follows.GetFollowingIDs(ctx, viewerID)
	return followingIDs, apperr.Wrap(err, "failed to list following")
}
