package memory

import (
	"context"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
)

type NotificationRepository struct{ s *Store }

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)

func (r *NotificationRepository) CreateNotifications(_ context.Context, notifications []models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for _, n := range notifications {
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		r.s.notifications = append(r.s.notifications, n)
	}
	return nil
}

// GetByRecipientID lists newest first; insertion order breaks timestamp ties.
func (r *NotificationRepository) GetByRecipientID(_ context.Context, recipientID string, page repositories.Page) ([]models.Notification, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var mine []models.Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		if n := r.s.notifications[i]; n.UserID == recipientID {
			mine = append(mine, n)
		}
	}
	out, total := pageOf(mine, page)
	return out, total, nil
}

func (r *NotificationRepository) GetUnreadCount(_ context.Context, recipientID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, notif := range r.s.notifications {
		if notif.UserID == recipientID && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *NotificationRepository) MarkAsRead(_ context.Context, notificationID, recipientID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.notifications {
		if n := &r.s.notifications[i]; n.ID == notificationID && n.UserID == recipientID {
			n.IsRead = true
			return nil
		}
	}
	return apperr.NotFound("notification not found")
}

func (r *NotificationRepository) MarkAllAsRead(_ context.Context, recipientID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for i := range r.s.notifications {
		if notif := &r.s.notifications[i]; notif.UserID == recipientID && !notif.IsRead {
			notif.IsRead = true
			n++
		}
	}
	return n, nil
}
