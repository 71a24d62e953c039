package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendshipLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewPostgresFriendshipRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	f, err := repo.CreateFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipPending, f.Status)
	assert.Equal(t, alice.ID, f.RequesterID)

	_, err = repo.CreateFriendRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, ErrEdgeExists)

	// Only the addressee can accept.
	_, err = repo.AcceptFriendRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, ErrStaleEdge)

	f, err = repo.AcceptFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipAccepted, f.Status)
	assert.EqualValues(t, 1, loadUser(t, db, alice.ID).FriendsCount)
	assert.EqualValues(t, 1, loadUser(t, db, bob.ID).FriendsCount)

	_, err = repo.AcceptFriendRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrStaleEdge)
	assert.EqualValues(t, 1, loadUser(t, db, alice.ID).FriendsCount)

	assert.ErrorIs(t, repo.DeleteFriendRequest(ctx, alice.ID, bob.ID), ErrStaleEdge)

	friends, total, err := repo.GetFriends(ctx, alice.ID, NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, friends, 1)
	assert.Equal(t, bob.ID, friends[0].ID)

	friendIDs, err := repo.GetFriendIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, friendIDs)

	require.NoError(t, repo.DeleteFriendship(ctx, bob.ID, alice.ID))
	assert.EqualValues(t, 0, loadUser(t, db, alice.ID).FriendsCount)
	assert.EqualValues(t, 0, loadUser(t, db, bob.ID).FriendsCount)

	assert.ErrorIs(t, repo.DeleteFriendship(ctx, alice.ID, bob.ID), ErrStaleEdge)
	assert.EqualValues(t, 0, loadUser(t, db, bob.ID).FriendsCount)

	f, err = repo.GetFriendship(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestFriendRequestListsAndCancel(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewPostgresFriendshipRepository(db)
	alice := seedUser(t, db, "alice")
	carol := seedUser(t, db, "carol")

	_, err := repo.CreateFriendRequest(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	incoming, total, err := repo.GetIncomingRequests(ctx, carol.ID, NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, incoming, 1)
	assert.Equal(t, alice.ID, incoming[0].ID)

	sent, _, err := repo.GetSentRequests(ctx, alice.ID, NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, carol.ID, sent[0].ID)

	none, total, err := repo.GetIncomingRequests(ctx, alice.ID, NewPage(1, 10))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)

	// The direction is part of the edge: carol never sent anything.
	assert.ErrorIs(t, repo.DeleteFriendRequest(ctx, carol.ID, alice.ID), ErrStaleEdge)

	require.NoError(t, repo.DeleteFriendRequest(ctx, alice.ID, carol.ID))
	assert.ErrorIs(t, repo.DeleteFriendRequest(ctx, alice.ID, carol.ID), ErrStaleEdge)

	f, err := repo.GetFriendship(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestAcceptRollsBackWhenAUserIsMissing(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewPostgresFriendshipRepository(db)
	alice := seedUser(t, db, "alice")

	_, err := repo.CreateFriendRequest(ctx, alice.ID, "u_ghost")
	require.NoError(t, err)

	_, err = repo.AcceptFriendRequest(ctx, alice.ID, "u_ghost")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	f, err := repo.GetFriendship(ctx, alice.ID, "u_ghost")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, models.FriendshipPending, f.Status)
	assert.Zero(t, loadUser(t, db, alice.ID).FriendsCount)
}
