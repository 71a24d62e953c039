package notify

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/anonto42/newsflash/backend/internal/repositories/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliverStoresEveryRecipientAndPushesTokens(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore().Notifications()
	sender := &fakeSender{}

	res := Deliver(ctx, store, NewDispatcher(sender), Task{
		Type:    models.NotificationNewPost,
		ActorID: "u-author",
		Title:   "New newsflash",
		Body:    "body",
		Data:    map[string]string{"postId": "p1"},
		Recipients: []Recipient{
			{UserID: "u1", PushToken: "tok-1"},
			{UserID: "u2"},
		},
	})
	assert.Equal(t, Result{Sent: 1, Skipped: 1}, res)
	assert.Equal(t, [][]string{{"tok-1"}}, sender.Calls())

	for _, id := range []string{"u1", "u2"} {
		got, total, err := store.GetByRecipientID(ctx, id, repositories.NewPage(1, 10))
		require.NoError(t, err)
		require.EqualValues(t, 1, total)
		assert.Equal(t, models.NotificationNewPost, got[0].Type)
		assert.Equal(t, "u-author", got[0].ActorID)
		assert.Equal(t, "p1", got[0].Data["postId"])
		assert.False(t, got[0].IsRead)
	}
}

func TestQueueDrainsOnClose(t *testing.T) {
	store := memory.NewStore().Notifications()
	sender := &fakeSender{}
	q := NewQueue(store, NewDispatcher(sender), QueueConfig{Workers: 2, Size: 16, Timeout: time.Second})
	q.Start()

	for i := 0; i < 5; i++ {
		q.Enqueue(Task{Type: models.NotificationLike, Recipients: []Recipient{{UserID: "u1", PushToken: "tok"}}})
	}
	q.Close()

	n, err := store.GetUnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
	assert.Len(t, sender.Calls(), 5)

	// Enqueue after close is dropped without panicking.
	assert.NotPanics(t, func() {
		q.Enqueue(Task{Type: models.NotificationLike, Recipients: []Recipient{{UserID: "u1"}}})
	})
	q.Close()
}

func TestQueueDropsWhenFull(t *testing.T) {
	store := memory.NewStore().Notifications()
	q := NewQueue(store, NewDispatcher(&fakeSender{}), QueueConfig{Workers: 1, Size: 2})

	// Workers are not started, so only the buffer's worth is kept.
	for i := 0; i < 5; i++ {
		q.Enqueue(Task{Type: models.NotificationLike, Recipients: []Recipient{{UserID: "u1"}}})
	}
	assert.Len(t, q.tasks, 2)

	q.Enqueue(Task{Type: models.NotificationLike})
	assert.Len(t, q.tasks, 2, "tasks without recipients are ignored")

	q.Start()
	q.Close()
	n, err := store.GetUnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestQueueCountsDrops(t *testing.T) {
	const typ = "metrics_sample"
	q := NewQueue(memory.NewStore().Notifications(), NewDispatcher(&fakeSender{}), QueueConfig{Workers: 1, Size: 1})

	for i := 0; i < 3; i++ {
		q.Enqueue(Task{Type: typ, Recipients: []Recipient{{UserID: "u1"}}})
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(tasksEnqueued.WithLabelValues(typ)))
	assert.Equal(t, 2.0, testutil.ToFloat64(tasksDropped.WithLabelValues(typ, "full")))

	q.Start()
	q.Close()
	q.Enqueue(Task{Type: typ, Recipients: []Recipient{{UserID: "u1"}}})
	assert.Equal(t, 1.0, testutil.ToFloat64(tasksDropped.WithLabelValues(typ, "closed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pushesProcessed.WithLabelValues(typ, "skipped")))
}
