package services

import (
	"sync"
	"testing"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendshipSendAndAccept(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "tok-a")
	bob := f.user(t, "bob", "tok-b")

	st, err := f.friendships.SendRequest(f.ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipPending, st.Status)
	assert.True(t, st.RequestSent)
	assert.True(t, st.CanCancel)

	bobView, err := f.friendships.Status(f.ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, bobView.RequestReceived)
	assert.True(t, bobView.CanAccept)
	assert.Equal(t, alice.ID, bobView.RequesterID)

	_, err = f.friendships.Accept(f.ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	for _, pair := range [][2]string{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		st, err := f.friendships.Status(f.ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, st.AreFriends)
		assert.Equal(t, models.FriendshipAccepted, st.Status)
		assert.False(t, st.CanSendRequest)
	}
	assert.EqualValues(t, 1, f.reload(t, alice.ID).FriendsCount)
	assert.EqualValues(t, 1, f.reload(t, bob.ID).FriendsCount)

	requests := f.recorder.OfType(models.NotificationFriendRequest)
	require.Len(t, requests, 1)
	assert.Equal(t, []string{bob.ID}, recipientIDs(requests[0].Recipients))

	accepts := f.recorder.OfType(models.NotificationFriendAccept)
	require.Len(t, accepts, 1)
	assert.Equal(t, []string{alice.ID}, recipientIDs(accepts[0].Recipients))
	assert.Equal(t, "tok-a", accepts[0].Recipients[0].PushToken)
}

func TestFriendshipSendRequestConflicts(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "")
	bob := f.user(t, "bob", "")
	carol := f.user(t, "carol", "")

	_, err := f.friendships.SendRequest(f.ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	f.befriend(t, alice, carol)

	tests := []struct {
		name    string
		from    string
		to      string
		kind    apperr.Kind
		message string
	}{
		{"self", alice.ID, alice.ID, apperr.KindValidation, "cannot send a friend request to yourself"},
		{"unknown user", alice.ID, "u-missing", apperr.KindNotFound, "user not found"},
		{"already sent", alice.ID, bob.ID, apperr.KindConflict, "friend request already sent"},
		{"reverse pending", bob.ID, alice.ID, apperr.KindConflict, "this user already sent you a friend request, accept it instead"},
		{"already friends", carol.ID, alice.ID, apperr.KindConflict, "already friends"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.friendships.SendRequest(f.ctx, tt.from, tt.to)
			requireKind(t, err, tt.kind)
			assert.Equal(t, tt.message, err.Error())
		})
	}

	_, err = f.friendships.SendRequest(f.ctx, alice.ID, alice.ID)
	assert.True(t, errors.Is(err, apperr.ErrSelfReference))
}

func TestFriendshipRejectThenResend(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "")
	bob := f.user(t, "bob", "")

	_, err := f.friendships.SendRequest(f.ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, f.friendships.Reject(f.ctx, alice.ID, bob.ID))

	st, err := f.friendships.Status(f.ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipNone, st.Status)
	assert.True(t, st.CanSendRequest)

	_, err = f.friendships.SendRequest(f.ctx, alice.ID, bob.ID)
	require.NoError(t, err)
}

func TestFriendshipTransitionsRequireMatchingState(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "")
	bob := f.user(t, "bob", "")

	_, err := f.friendships.Accept(f.ctx, alice.ID, bob.ID)
	requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, "no pending friend request", err.Error())

	_, err = f.friendships.SendRequest(f.ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// alice cannot accept her own request, and bob cannot cancel it.
	_, err = f.friendships.Accept(f.ctx, bob.ID, alice.ID)
	requireKind(t, err, apperr.KindConflict)
	requireKind(t, f.friendships.Cancel(f.ctx, alice.ID, bob.ID), apperr.KindConflict)
	requireKind(t, f.friendships.Remove(f.ctx, alice.ID, bob.ID), apperr.KindConflict)

	require.NoError(t, f.friendships.Cancel(f.ctx, bob.ID, alice.ID))
	st, err := f.friendships.Status(f.ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipNone, st.Status)
}

func TestFriendshipRemove(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "")
	bob := f.user(t, "bob", "")
	f.befriend(t, alice, bob)

	require.NoError(t, f.friendships.Remove(f.ctx, bob.ID, alice.ID))
	assert.EqualValues(t, 0, f.reload(t, alice.ID).FriendsCount)
	assert.EqualValues(t, 0, f.reload(t, bob.ID).FriendsCount)

	err := f.friendships.Remove(f.ctx, bob.ID, alice.ID)
	requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, "not friends", err.Error())
}

func TestFriendshipListings(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "")
	bob := f.user(t, "bob", "")
	carol := f.user(t, "carol", "")
	dave := f.user(t, "dave", "")

	f.befriend(t, alice, bob)
	_, err := f.friendships.SendRequest(f.ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = f.friendships.SendRequest(f.ctx, alice.ID, dave.ID)
	require.NoError(t, err)

	page := repositories.NewPage(1, 10)

	friends, total, err := f.friendships.Friends(f.ctx, alice.ID, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, bob.ID, friends[0].ID)

	incoming, _, err := f.friendships.PendingRequests(f.ctx, alice.ID, page)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, carol.ID, incoming[0].ID)

	sent, _, err := f.friendships.SentRequests(f.ctx, alice.ID, page)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, dave.ID, sent[0].ID)

	_, _, err = f.friendships.Friends(f.ctx, "u-missing", page)
	requireKind(t, err, apperr.KindNotFound)
}

func TestFriendshipConcurrentAcceptCountsOnce(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "")
	bob := f.user(t, "bob", "")
	_, err := f.friendships.SendRequest(f.ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.friendships.Accept(f.ctx, alice.ID, bob.ID); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.EqualValues(t, 1, f.reload(t, alice.ID).FriendsCount)
	assert.EqualValues(t, 1, f.reload(t, bob.ID).FriendsCount)
}

func TestFriendshipGraph(t *testing.T) {
	f := newFixture(t, false)
	alice := f.user(t, "alice", "")
	bob := f.user(t, "bob", "")
	carol := f.user(t, "carol", "")
	f.befriend(t, alice, bob)
	_, err := f.friendships.SendRequest(f.ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	audience, err := f.friendships.Audience(f.ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, audience, 1)
	assert.Equal(t, bob.ID, audience[0].ID)

	ok, err := f.friendships.IsConnected(f.ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.friendships.IsConnected(f.ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	connections, err := f.friendships.ConnectionIDs(f.ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, connections)
}
