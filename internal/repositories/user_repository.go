package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetPushToken(ctx context.Context, id, token string) error
	SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser inserts a user; a taken email or Firebase UID is a conflict.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if isUniqueViolation(err) {
		return apperr.Conflict("a user with this email already exists")
	}
	return errors.Wrap(err, "create user")
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, gormErr(err, "user not found", "get user")
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, gormErr(err, "user not found", "get user by email")
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, gormErr(err, "user not found", "get user by firebase uid")
	}
	return &user, nil
}

// GetUsersByIDs returns the users that exist among ids, in no particular
// order.
func (r *PostgresUserRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, errors.Wrap(err, "get users by ids")
}

// UpdateProfile writes the profile columns only; counts are owned by the
// relationship repositories.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"full_name":    user.FullName,
		"email":        user.Email,
		"firebase_uid": user.FirebaseUID,
		"updated_at":   user.UpdatedAt,
	})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return apperr.Conflict("a user with this email already exists")
		}
		return errors.Wrap(res.Error, "update user")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *PostgresUserRepository) SetPushToken(ctx context.Context, id, token string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"push_token": token,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return errors.Wrap(res.Error, "set push token")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// SearchUsers searches for users by name or email
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	var users []models.User
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern).
		Order("full_name").
		Limit(limit).
		Find(&users).Error
	return users, errors.Wrap(err, "search users")
}

var _ UserRepository = (*PostgresUserRepository)(nil)
