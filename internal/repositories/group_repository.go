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

// GroupRepository defines the interface for group, membership and invite
// operations.
type GroupRepository interface {
	// CreateGroup inserts the group and its owner membership.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroupByID(ctx context.Context, id string) (*models.Group, error)
	GetGroupsForUser(ctx context.Context, userID string) ([]models.Group, error)
	GetGroupIDsForUser(ctx context.Context, userID string) ([]string, error)
	// CountMemberships counts how many of groupIDs have userID as a member.
	CountMemberships(ctx context.Context, userID string, groupIDs []string) (int64, error)
	// GetMembers returns the distinct members of all groupIDs.
	GetMembers(ctx context.Context, groupIDs []string) ([]models.User, error)
	CreateInvite(ctx context.Context, invite *models.GroupInvite) error
	// AcceptInvite consumes the invite and adds the membership atomically.
	AcceptInvite(ctx context.Context, groupID, userID string) error
	DeleteInvite(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	TransferOwnership(ctx context.Context, groupID, fromID, toID string) error
	// DeleteGroupIfSoleMember deletes the group only while ownerID still owns
	// it and is its only member; otherwise it returns ErrStaleEdge.
	DeleteGroupIfSoleMember(ctx context.Context, groupID, ownerID string) error
}

// PostgresGroupRepository implements GroupRepository for PostgreSQL
type PostgresGroupRepository struct {
	db *gorm.DB
}

// NewPostgresGroupRepository creates a new PostgresGroupRepository
func NewPostgresGroupRepository(db *gorm.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

func (r *PostgresGroupRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	group.Members = []models.GroupMember{{
		GroupID:  group.ID,
		UserID:   group.OwnerID,
		Role:     models.GroupRoleOwner,
		JoinedAt: time.Now(),
	}}
	return errors.Wrap(r.db.WithContext(ctx).Create(group).Error, "create group")
}

func (r *PostgresGroupRepository) GetGroupByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).
		Preload("Members").
		Preload("Invites").
		Where("id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, gormErr(err, "group not found", "get group")
	}
	return &group, nil
}

func (r *PostgresGroupRepository) GetGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).
		Preload("Members").
		Where("id IN (?)", r.db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)).
		Order("name").
		Find(&groups).Error
	return groups, errors.Wrap(err, "get groups for user")
}

func (r *PostgresGroupRepository) GetGroupIDsForUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.GroupMember{}).Where("user_id = ?", userID).Pluck("group_id", &ids).Error
	return ids, errors.Wrap(err, "get group ids for user")
}

func (r *PostgresGroupRepository) CountMemberships(ctx context.Context, userID string, groupIDs []string) (int64, error) {
	var count int64
	if len(groupIDs) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("user_id = ? AND group_id IN ?", userID, groupIDs).
		Count(&count).Error
	return count, errors.Wrap(err, "count memberships")
}

func (r *PostgresGroupRepository) GetMembers(ctx context.Context, groupIDs []string) ([]models.User, error) {
	var users []models.User
	if len(groupIDs) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&models.GroupMember{}).Select("user_id").Where("group_id IN ?", groupIDs)).
		Find(&users).Error
	return users, errors.Wrap(err, "get group members")
}

func (r *PostgresGroupRepository) CreateInvite(ctx context.Context, invite *models.GroupInvite) error {
	err := r.db.WithContext(ctx).Create(invite).Error
	if isUniqueViolation(err) {
		return ErrEdgeExists
	}
	return errors.Wrap(err, "create invite")
}

func (r *PostgresGroupRepository) AcceptInvite(ctx context.Context, groupID, userID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGroup(tx, groupID); err != nil {
			return err
		}
		res := tx.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupInvite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("invite not found")
		}
		return tx.Create(&models.GroupMember{
			GroupID:  groupID,
			UserID:   userID,
			Role:     models.GroupRoleMember,
			JoinedAt: time.Now(),
		}).Error
	})
	return txErr(err, "accept invite")
}

func (r *PostgresGroupRepository) DeleteInvite(ctx context.Context, groupID, userID string) error {
	res := r.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupInvite{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete invite")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("invite not found")
	}
	return nil
}

func (r *PostgresGroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	res := r.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "remove member")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("not a member of this group")
	}
	return nil
}

// TransferOwnership swaps the owner role between two members. The group row
// is only updated while fromID still owns it.
func (r *PostgresGroupRepository) TransferOwnership(ctx context.Context, groupID, fromID, toID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Group{}).
			Where("id = ? AND owner_id = ?", groupID, fromID).
			Updates(map[string]interface{}{"owner_id": toID, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleEdge
		}
		res = tx.Model(&models.GroupMember{}).
			Where("group_id = ? AND user_id = ?", groupID, toID).
			Update("role", models.GroupRoleOwner)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("new owner is not a member of this group")
		}
		return tx.Model(&models.GroupMember{}).
			Where("group_id = ? AND user_id = ?", groupID, fromID).
			Update("role", models.GroupRoleMember).Error
	})
	return txErr(err, "transfer ownership")
}

func (r *PostgresGroupRepository) DeleteGroupIfSoleMember(ctx context.Context, groupID, ownerID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND owner_id = ?", groupID, ownerID).
			Limit(1).
			Find(&group)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleEdge
		}
		var members int64
		if err := tx.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Count(&members).Error; err != nil {
			return err
		}
		if members != 1 {
			return ErrStaleEdge
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupInvite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", groupID).Delete(&models.Group{}).Error
	})
	if errors.Is(err, ErrStaleEdge) {
		return err
	}
	return txErr(err, "delete group")
}

// lockGroup takes the group row lock that membership changes serialize on.
func lockGroup(tx *gorm.DB, groupID string) error {
	var group models.Group
	res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", groupID).Limit(1).Find(&group)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("group not found")
	}
	return nil
}

var _ GroupRepository = (*PostgresGroupRepository)(nil)
