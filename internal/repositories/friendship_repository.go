package repositories

import (
	"context"
	"time"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/ids"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// FriendshipRepository stores the single friendship edge per user pair.
// Every transition is a compare-and-swap on the edge's state so two requests
// racing on the same pair cannot both succeed.
type FriendshipRepository interface {
	// GetFriendship returns the edge between a and b, or nil when none exists.
	GetFriendship(ctx context.Context, a, b string) (*models.Friendship, error)
	CreateFriendRequest(ctx context.Context, requesterID, addresseeID string) (*models.Friendship, error)
	AcceptFriendRequest(ctx context.Context, requesterID, accepterID string) (*models.Friendship, error)
	DeleteFriendRequest(ctx context.Context, requesterID, addresseeID string) error
	DeleteFriendship(ctx context.Context, a, b string) error
	GetFriends(ctx context.Context, userID string, page Page) ([]models.User, int64, error)
	GetFriendIDs(ctx context.Context, userID string) ([]string, error)
	GetIncomingRequests(ctx context.Context, userID string, page Page) ([]models.User, int64, error)
	GetSentRequests(ctx context.Context, userID string, page Page) ([]models.User, int64, error)
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

func (r *PostgresFriendshipRepository) GetFriendship(ctx context.Context, a, b string) (*models.Friendship, error) {
	low, high := models.FriendPair(a, b)
	var f models.Friendship
	err := r.db.WithContext(ctx).Where("user_low_id = ? AND user_high_id = ?", low, high).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get friendship")
	}
	return &f, nil
}

// CreateFriendRequest inserts a pending edge. The unique pair index turns a
// concurrent duplicate into ErrEdgeExists.
func (r *PostgresFriendshipRepository) CreateFriendRequest(ctx context.Context, requesterID, addresseeID string) (*models.Friendship, error) {
	low, high := models.FriendPair(requesterID, addresseeID)
	f := &models.Friendship{
		ID:          ids.Friendship(),
		UserLowID:   low,
		UserHighID:  high,
		RequesterID: requesterID,
		Status:      models.FriendshipPending,
	}
	err := r.db.WithContext(ctx).Create(f).Error
	if isUniqueViolation(err) {
		return nil, ErrEdgeExists
	}
	if err != nil {
		return nil, errors.Wrap(err, "create friend request")
	}
	return f, nil
}

// AcceptFriendRequest moves pending(requesterID) to accepted and bumps both
// friend counts in the same transaction.
func (r *PostgresFriendshipRepository) AcceptFriendRequest(ctx context.Context, requesterID, accepterID string) (*models.Friendship, error) {
	low, high := models.FriendPair(requesterID, accepterID)
	var f models.Friendship
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Friendship{}).
			Where("user_low_id = ? AND user_high_id = ? AND status = ? AND requester_id = ?",
				low, high, models.FriendshipPending, requesterID).
			Updates(map[string]interface{}{"status": models.FriendshipAccepted, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleEdge
		}
		if err := bumpFriendCounts(tx, []string{low, high}, 1, now); err != nil {
			return err
		}
		return tx.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&f).Error
	})
	if err != nil {
		return nil, txErr(err, "accept friend request")
	}
	return &f, nil
}

// DeleteFriendRequest removes a pending edge sent by requesterID. It serves
// both reject (called by the addressee) and cancel (called by the requester).
func (r *PostgresFriendshipRepository) DeleteFriendRequest(ctx context.Context, requesterID, addresseeID string) error {
	low, high := models.FriendPair(requesterID, addresseeID)
	res := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ? AND status = ? AND requester_id = ?",
			low, high, models.FriendshipPending, requesterID).
		Delete(&models.Friendship{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete friend request")
	}
	if res.RowsAffected == 0 {
		return ErrStaleEdge
	}
	return nil
}

// DeleteFriendship removes an accepted edge and decrements both counts.
func (r *PostgresFriendshipRepository) DeleteFriendship(ctx context.Context, a, b string) error {
	low, high := models.FriendPair(a, b)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_low_id = ? AND user_high_id = ? AND status = ?", low, high, models.FriendshipAccepted).
			Delete(&models.Friendship{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleEdge
		}
		return bumpFriendCounts(tx, []string{low, high}, -1, time.Now())
	})
	return txErr(err, "delete friendship")
}

func bumpFriendCounts(tx *gorm.DB, userIDs []string, delta int, now time.Time) error {
	res := tx.Model(&models.User{}).
		Where("id IN ?", userIDs).
		Updates(map[string]interface{}{
			"friends_count": gorm.Expr("friends_count + ?", delta),
			"updated_at":    now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(userIDs)) {
		return apperr.NotFound("user not found")
	}
	return nil
}

// friendIDsQuery selects the other endpoint of every edge of userID in the
// given status.
func (r *PostgresFriendshipRepository) friendIDsQuery(userID, status string) *gorm.DB {
	return r.db.Table("friendships").
		Select("CASE WHEN user_low_id = ? THEN user_high_id ELSE user_low_id END", userID).
		Where("(user_low_id = ? OR user_high_id = ?) AND status = ?", userID, userID, status)
}

func (r *PostgresFriendshipRepository) GetFriends(ctx context.Context, userID string, page Page) ([]models.User, int64, error) {
	return pageOfUsers(ctx, r.db, r.friendIDsQuery(userID, models.FriendshipAccepted), page)
}

func (r *PostgresFriendshipRepository) GetFriendIDs(ctx context.Context, userID string) ([]string, error) {
	var out []string
	err := r.friendIDsQuery(userID, models.FriendshipAccepted).WithContext(ctx).Scan(&out).Error
	return out, errors.Wrap(err, "get friend ids")
}

// GetIncomingRequests lists users with a pending request addressed to userID.
func (r *PostgresFriendshipRepository) GetIncomingRequests(ctx context.Context, userID string, page Page) ([]models.User, int64, error) {
	sub := r.db.Table("friendships").
		Select("requester_id").
		Where("(user_low_id = ? OR user_high_id = ?) AND status = ? AND requester_id <> ?",
			userID, userID, models.FriendshipPending, userID)
	return pageOfUsers(ctx, r.db, sub, page)
}

// GetSentRequests lists users userID has a pending request out to.
func (r *PostgresFriendshipRepository) GetSentRequests(ctx context.Context, userID string, page Page) ([]models.User, int64, error) {
	sub := r.db.Table("friendships").
		Select("CASE WHEN user_low_id = ? THEN user_high_id ELSE user_low_id END", userID).
		Where("requester_id = ? AND status = ?", userID, models.FriendshipPending)
	return pageOfUsers(ctx, r.db, sub, page)
}

var _ FriendshipRepository = (*PostgresFriendshipRepository)(nil)
