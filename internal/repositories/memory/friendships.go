package memory

import (
	"context"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/ids"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
)

type FriendshipRepository struct{ s *Store }

var _ repositories.FriendshipRepository = (*FriendshipRepository)(nil)

func pair(a, b string) pairKey {
	low, high := models.FriendPair(a, b)
	return pairKey{low: low, high: high}
}

func (r *FriendshipRepository) GetFriendship(_ context.Context, a, b string) (*models.Friendship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.friendships[pair(a, b)]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r *FriendshipRepository) CreateFriendRequest(_ context.Context, requesterID, addresseeID string) (*models.Friendship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pair(requesterID, addresseeID)
	if _, ok := r.s.friendships[key]; ok {
		return nil, repositories.ErrEdgeExists
	}
	now := r.s.now()
	f := models.Friendship{
		ID:          ids.Friendship(),
		UserLowID:   key.low,
		UserHighID:  key.high,
		RequesterID: requesterID,
		Status:      models.FriendshipPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.friendships[key] = f
	return &f, nil
}

func (r *FriendshipRepository) AcceptFriendRequest(_ context.Context, requesterID, accepterID string) (*models.Friendship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pair(requesterID, accepterID)
	f, ok := r.s.friendships[key]
	if !ok || f.Status != models.FriendshipPending || f.RequesterID != requesterID {
		return nil, repositories.ErrStaleEdge
	}
	if err := r.bumpCounts(key, 1); err != nil {
		return nil, err
	}
	f.Status = models.FriendshipAccepted
	f.UpdatedAt = r.s.now()
	r.s.friendships[key] = f
	return &f, nil
}

func (r *FriendshipRepository) DeleteFriendRequest(_ context.Context, requesterID, addresseeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pair(requesterID, addresseeID)
	f, ok := r.s.friendships[key]
	if !ok || f.Status != models.FriendshipPending || f.RequesterID != requesterID {
		return repositories.ErrStaleEdge
	}
	delete(r.s.friendships, key)
	return nil
}

func (r *FriendshipRepository) DeleteFriendship(_ context.Context, a, b string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pair(a, b)
	f, ok := r.s.friendships[key]
	if !ok || f.Status != models.FriendshipAccepted {
		return repositories.ErrStaleEdge
	}
	if err := r.bumpCounts(key, -1); err != nil {
		return err
	}
	delete(r.s.friendships, key)
	return nil
}

func (r *FriendshipRepository) bumpCounts(key pairKey, delta int64) error {
	low, okLow := r.s.users[key.low]
	high, okHigh := r.s.users[key.high]
	if !okLow || !okHigh {
		return apperr.NotFound("user not found")
	}
	now := r.s.now()
	low.FriendsCount += delta
	low.UpdatedAt = now
	high.FriendsCount += delta
	high.UpdatedAt = now
	r.s.users[key.low] = low
	r.s.users[key.high] = high
	return nil
}

// others collects the far endpoint of every edge of userID that keep
// accepts. Callers hold the lock.
func (r *FriendshipRepository) others(userID string, keep func(models.Friendship) bool) []string {
	var out []string
	for key, f := range r.s.friendships {
		if key.low != userID && key.high != userID {
			continue
		}
		if keep(f) {
			out = append(out, f.Other(userID))
		}
	}
	return out
}

func accepted(f models.Friendship) bool { return f.Status == models.FriendshipAccepted }

func (r *FriendshipRepository) GetFriends(_ context.Context, userID string, page repositories.Page) ([]models.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users, total := pageOf(r.s.usersByID(r.others(userID, accepted)), page)
	return users, total, nil
}

func (r *FriendshipRepository) GetFriendIDs(_ context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.others(userID, accepted), nil
}

func (r *FriendshipRepository) GetIncomingRequests(_ context.Context, userID string, page repositories.Page) ([]models.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	peerIDs := r.others(userID, func(f models.Friendship) bool {
		return f.Status == models.FriendshipPending && f.RequesterID != userID
	})
	users, total := pageOf(r.s.usersByID(peerIDs), page)
	return users, total, nil
}

func (r *FriendshipRepository) GetSentRequests(_ context.Context, userID string, page repositories.Page) ([]models.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	peerIDs := r.others(userID, func(f models.Friendship) bool {
		return f.Status == models.FriendshipPending && f.RequesterID == userID
	})
	users, total := pageOf(r.s.usersByID(peerIDs), page)
	return users, total, nil
}
