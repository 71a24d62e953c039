package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/ids"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationReadState(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresNotificationRepository(newTestDB(t))

	now := time.Now()
	older := models.Notification{ID: ids.Notification(), UserID: "u_1", ActorID: "u_2", Type: "post", Title: "older", CreatedAt: now.Add(-time.Minute)}
	newer := models.Notification{ID: ids.Notification(), UserID: "u_1", ActorID: "u_2", Type: "post", Title: "newer", CreatedAt: now}
	other := models.Notification{ID: ids.Notification(), UserID: "u_3", ActorID: "u_2", Type: "post", Title: "other", CreatedAt: now}
	require.NoError(t, repo.CreateNotifications(ctx, []models.Notification{older, newer, other}))
	require.NoError(t, repo.CreateNotifications(ctx, nil))

	list, total, err := repo.GetByRecipientID(ctx, "u_1", NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Title)

	unread, err := repo.GetUnreadCount(ctx, "u_1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	// Another user cannot mark u_1's notification.
	err = repo.MarkAsRead(ctx, older.ID, "u_3")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	unread, err = repo.GetUnreadCount(ctx, "u_1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	require.NoError(t, repo.MarkAsRead(ctx, older.ID, "u_1"))
	n, err := repo.MarkAllAsRead(ctx, "u_1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	unread, err = repo.GetUnreadCount(ctx, "u_3")
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}
