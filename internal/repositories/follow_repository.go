package repositories

import (
	"context"
	"time"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowToggle is the committed outcome of a follow toggle, with both users
// re-read after their counts were updated.
type FollowToggle struct {
	Following bool
	Follower  models.User
	Followee  models.User
}

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	ToggleFollow(ctx context.Context, followerID, followingID string) (*FollowToggle, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	GetFollowers(ctx context.Context, userID string, page Page) ([]models.User, int64, error)
	GetFollowing(ctx context.Context, userID string, page Page) ([]models.User, int64, error)
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
	GetFollowingIDs(ctx context.Context, userID string) ([]string, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// ToggleFollow flips the follower→following edge and both denormalised
// counts in one transaction. Both user rows are locked first, so concurrent
// toggles on the same pair serialise instead of losing an update.
func (r *PostgresFollowRepository) ToggleFollow(ctx context.Context, followerID, followingID string) (*FollowToggle, error) {
	var out FollowToggle
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users []models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", []string{followerID, followingID}).
			Order("id").
			Find(&users).Error; err != nil {
			return err
		}
		if len(users) != 2 {
			return apperr.NotFound("user not found")
		}

		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		delta := -1
		if res.RowsAffected == 0 {
			if err := tx.Create(&models.Follow{FollowerID: followerID, FollowingID: followingID}).Error; err != nil {
				return err
			}
			delta = 1
		}
		out.Following = delta > 0

		now := time.Now()
		if err := tx.Model(&models.User{}).Where("id = ?", followerID).Updates(map[string]interface{}{
			"following_count": gorm.Expr("following_count + ?", delta),
			"updated_at":      now,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", followingID).Updates(map[string]interface{}{
			"followers_count": gorm.Expr("followers_count + ?", delta),
			"updated_at":      now,
		}).Error; err != nil {
			return err
		}

		if err := tx.Where("id = ?", followerID).First(&out.Follower).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", followingID).First(&out.Followee).Error
	})
	if err != nil {
		return nil, txErr(err, "toggle follow")
	}
	return &out, nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "is following")
}

func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID string, page Page) ([]models.User, int64, error) {
	sub := r.db.Table("follows").Select("follower_id").Where("following_id = ?", userID)
	return pageOfUsers(ctx, r.db, sub, page)
}

func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID string, page Page) ([]models.User, int64, error) {
	sub := r.db.Table("follows").Select("following_id").Where("follower_id = ?", userID)
	return pageOfUsers(ctx, r.db, sub, page)
}

func (r *PostgresFollowRepository) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", userID).Pluck("follower_id", &ids).Error
	return ids, errors.Wrap(err, "get follower ids")
}

func (r *PostgresFollowRepository) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, errors.Wrap(err, "get following ids")
}

var _ FollowRepository = (*PostgresFollowRepository)(nil)
