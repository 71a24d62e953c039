package memory

import (
	"context"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
)

type FollowRepository struct{ s *Store }

var _ repositories.FollowRepository = (*FollowRepository)(nil)

func (r *FollowRepository) ToggleFollow(_ context.Context, followerID, followingID string) (*repositories.FollowToggle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	follower, ok := r.s.users[followerID]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	followee, ok := r.s.users[followingID]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}

	now := r.s.now()
	key := followKey{follower: followerID, following: followingID}
	_, following := r.s.follows[key]
	delta := int64(1)
	if following {
		delete(r.s.follows, key)
		delta = -1
	} else {
		r.s.follows[key] = models.Follow{FollowerID: followerID, FollowingID: followingID, CreatedAt: now}
	}

	follower.FollowingCount += delta
	follower.UpdatedAt = now
	followee.FollowersCount += delta
	followee.UpdatedAt = now
	r.s.users[followerID] = follower
	r.s.users[followingID] = followee

	return &repositories.FollowToggle{Following: !following, Follower: follower, Followee: followee}, nil
}

func (r *FollowRepository) IsFollowing(_ context.Context, followerID, followingID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.follows[followKey{follower: followerID, following: followingID}]
	return ok, nil
}

func (r *FollowRepository) GetFollowers(_ context.Context, userID string, page repositories.Page) ([]models.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users, total := pageOf(r.s.usersByID(r.followerIDs(userID)), page)
	return users, total, nil
}

func (r *FollowRepository) GetFollowing(_ context.Context, userID string, page repositories.Page) ([]models.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users, total := pageOf(r.s.usersByID(r.followingIDs(userID)), page)
	return users, total, nil
}

func (r *FollowRepository) GetFollowerIDs(_ context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.followerIDs(userID), nil
}

func (r *FollowRepository) GetFollowingIDs(_ context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.followingIDs(userID), nil
}

func (r *FollowRepository) followerIDs(userID string) []string {
	var out []string
	for k := range r.s.follows {
		if k.following == userID {
			out = append(out, k.follower)
		}
	}
	return out
}

func (r *FollowRepository) followingIDs(userID string) []string {
	var out []string
	for k := range r.s.follows {
		if k.follower == userID {
			out = append(out, k.following)
		}
	}
	return out
}
