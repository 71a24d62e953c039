package services

import (
	"strings"
	"sync"
	"testing"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "tok-a")
	bob := f.user(t, "bob", "")
	p := f.post(t, alice, models.Audience{})

	res, err := f.engagement.ToggleLike(f.ctx, p.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResult{IsLiked: true, LikesCount: 1, Action: ActionLiked}, res)

	res, err = f.engagement.ToggleLike(f.ctx, p.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResult{IsLiked: false, LikesCount: 0, Action: ActionUnliked}, res)

	stored, err := f.store.Posts().GetPostByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Likes)
	assert.Zero(t, stored.LikesCount)

	likes := f.recorder.OfType(models.NotificationLike)
	require.Len(t, likes, 1)
	assert.Equal(t, []string{alice.ID}, recipientIDs(likes[0].Recipients))
	assert.Equal(t, p.ID, likes[0].Data["postId"])
}

func TestToggleLikeOwnPostDoesNotNotify(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "tok-a")
	p := f.post(t, alice, models.Audience{})

	_, err := f.engagement.ToggleLike(f.ctx, p.ID, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, f.recorder.OfType(models.NotificationLike))
}

func TestToggleLikeRequiresVisiblePost(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "")
	bob := f.user(t, "bob", "")
	p := f.post(t, alice, models.Audience{Type: models.AudienceFriends})

	_, err := f.engagement.ToggleLike(f.ctx, p.ID, bob.ID)
	requireKind(t, err, apperr.KindNotFound)

	_, err = f.engagement.ToggleLike(f.ctx, "p-missing", bob.ID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestToggleLikeConcurrentUsers(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "")
	p := f.post(t, alice, models.Audience{})

	likers := make([]models.User, 10)
	for i := range likers {
		likers[i] = f.user(t, "liker"+string(rune('a'+i)), "")
	}

	var wg sync.WaitGroup
	for _, u := range likers {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = f.engagement.ToggleLike(f.ctx, p.ID, id)
		}(u.ID)
	}
	wg.Wait()

	stored, err := f.store.Posts().GetPostByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Likes, len(likers))
	assert.Equal(t, len(likers), stored.LikesCount)
}

func TestAddComment(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "")
	bob := f.user(t, "bob", "")
	p := f.post(t, alice, models.Audience{})

	c, count, err := f.engagement.AddComment(f.ctx, p.ID, bob.ID, "  nice one  ")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "nice one", c.Text)
	assert.True(t, strings.HasPrefix(c.ID, "c"))
	assert.Equal(t, p.ID, c.PostID)
	assert.False(t, c.CreatedAt.IsZero())

	comments, err := f.engagement.Comments(f.ctx, p.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, c.ID, comments[0].ID)

	notes := f.recorder.OfType(models.NotificationComment)
	require.Len(t, notes, 1)
	assert.Equal(t, c.ID, notes[0].Data["commentId"])
}

func TestAddCommentValidation(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "")
	p := f.post(t, alice, models.Audience{})

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", " \n\t "},
		{"too long", strings.Repeat("é", models.MaxCommentLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.engagement.AddComment(f.ctx, p.ID, alice.ID, tt.text)
			requireKind(t, err, apperr.KindValidation)
		})
	}

	_, count, err := f.engagement.AddComment(f.ctx, p.ID, alice.ID, strings.Repeat("é", models.MaxCommentLength))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteComment(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "")
	bob := f.user(t, "bob", "")
	p := f.post(t, alice, models.Audience{})

	mine, _, err := f.engagement.AddComment(f.ctx, p.ID, alice.ID, "first")
	require.NoError(t, err)
	_, _, err = f.engagement.AddComment(f.ctx, p.ID, bob.ID, "second")
	require.NoError(t, err)

	_, err = f.engagement.DeleteComment(f.ctx, p.ID, mine.ID, bob.ID)
	requireKind(t, err, apperr.KindAuthorization)
	assert.Equal(t, "you can only delete your own comments", err.Error())

	count, err := f.engagement.DeleteComment(f.ctx, p.ID, mine.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = f.engagement.DeleteComment(f.ctx, p.ID, mine.ID, alice.ID)
	requireKind(t, err, apperr.KindNotFound)

	other := f.post(t, bob, models.Audience{})
	c, _, err := f.engagement.AddComment(f.ctx, other.ID, bob.ID, "elsewhere")
	require.NoError(t, err)
	_, err = f.engagement.DeleteComment(f.ctx, p.ID, c.ID, bob.ID)
	requireKind(t, err, apperr.KindNotFound)
}
