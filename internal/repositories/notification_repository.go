package repositories

import (
	"context"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotifications(ctx context.Context, notifications []models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID string, page Page) ([]models.Notification, int64, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, notificationID, recipientID string) error
	MarkAllAsRead(ctx context.Context, recipientID string) (int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotifications(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return errors.Wrap(r.db.WithContext(ctx).CreateInBatches(notifications, 200).Error, "create notifications")
}

func (r *postgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID string, page Page) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", recipientID).Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count notifications")
	}

	err := q.Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&notifications).Error

	return notifications, total, errors.Wrap(err, "list notifications")
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ? AND is_read = false", recipientID).Count(&count).Error
	return count, errors.Wrap(err, "count unread notifications")
}

// MarkAsRead only touches notifications addressed to recipientID.
func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, notificationID, recipientID string) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, recipientID).
		Update("is_read", true)
	if res.Error != nil {
		return errors.Wrap(res.Error, "mark notification read")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ? AND is_read = false", recipientID).Update("is_read", true)
	return res.RowsAffected, errors.Wrap(res.Error, "mark all notifications read")
}
