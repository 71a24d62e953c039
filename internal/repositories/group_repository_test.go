package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/ids"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedGroup(t *testing.T, db *gorm.DB, owner models.User, members ...models.User) *models.Group {
	t.Helper()
	ctx := context.Background()
	repo := NewPostgresGroupRepository(db)
	g := &models.Group{ID: ids.Group(), Name: owner.FullName + "'s group", OwnerID: owner.ID}
	require.NoError(t, repo.CreateGroup(ctx, g))
	for _, m := range members {
		require.NoError(t, repo.CreateInvite(ctx, &models.GroupInvite{GroupID: g.ID, UserID: m.ID, InvitedBy: owner.ID}))
		require.NoError(t, repo.AcceptInvite(ctx, g.ID, m.ID))
	}
	return g
}

func roles(g *models.Group) map[string]string {
	out := make(map[string]string, len(g.Members))
	for _, m := range g.Members {
		out[m.UserID] = m.Role
	}
	return out
}

func TestGroupInviteAcceptance(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewPostgresGroupRepository(db)
	owner := seedUser(t, db, "owner")
	invitee := seedUser(t, db, "invitee")
	g := seedGroup(t, db, owner)

	err := repo.AcceptInvite(ctx, g.ID, invitee.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "invite not found", err.Error())

	err = repo.AcceptInvite(ctx, "g_missing", invitee.ID)
	require.Error(t, err)
	assert.Equal(t, "group not found", err.Error())

	require.NoError(t, repo.CreateInvite(ctx, &models.GroupInvite{GroupID: g.ID, UserID: invitee.ID, InvitedBy: owner.ID}))
	loaded, err := repo.GetGroupByID(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsInvited(invitee.ID))
	assert.False(t, loaded.IsMember(invitee.ID))

	require.NoError(t, repo.AcceptInvite(ctx, g.ID, invitee.ID))
	loaded, err = repo.GetGroupByID(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, loaded.IsInvited(invitee.ID))
	assert.Equal(t, models.GroupRoleMember, roles(loaded)[invitee.ID])

	// The invite was consumed with the first accept.
	err = repo.AcceptInvite(ctx, g.ID, invitee.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	n, err := repo.CountMemberships(ctx, invitee.ID, []string{g.ID, "g_missing"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	groupIDs, err := repo.GetGroupIDsForUser(ctx, invitee.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{g.ID}, groupIDs)

	members, err := repo.GetMembers(ctx, []string{g.ID})
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestGroupOwnershipTransfer(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewPostgresGroupRepository(db)
	owner := seedUser(t, db, "owner")
	member := seedUser(t, db, "member")
	stranger := seedUser(t, db, "stranger")
	g := seedGroup(t, db, owner, member)

	assert.ErrorIs(t, repo.TransferOwnership(ctx, g.ID, member.ID, owner.ID), ErrStaleEdge)

	err := repo.TransferOwnership(ctx, g.ID, owner.ID, stranger.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	loaded, err := repo.GetGroupByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, loaded.OwnerID, "failed transfer must roll back")

	require.NoError(t, repo.TransferOwnership(ctx, g.ID, owner.ID, member.ID))
	loaded, err = repo.GetGroupByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, loaded.OwnerID)
	assert.Equal(t, map[string]string{
		owner.ID:  models.GroupRoleMember,
		member.ID: models.GroupRoleOwner,
	}, roles(loaded))

	// A retry from the old owner lost the race.
	assert.ErrorIs(t, repo.TransferOwnership(ctx, g.ID, owner.ID, member.ID), ErrStaleEdge)
}

func TestDeleteGroupIfSoleMember(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewPostgresGroupRepository(db)
	owner := seedUser(t, db, "owner")
	member := seedUser(t, db, "member")
	invitee := seedUser(t, db, "invitee")
	g := seedGroup(t, db, owner, member)
	require.NoError(t, repo.CreateInvite(ctx, &models.GroupInvite{GroupID: g.ID, UserID: invitee.ID, InvitedBy: owner.ID}))

	assert.ErrorIs(t, repo.DeleteGroupIfSoleMember(ctx, g.ID, owner.ID), ErrStaleEdge)
	assert.ErrorIs(t, repo.DeleteGroupIfSoleMember(ctx, g.ID, member.ID), ErrStaleEdge)
	assert.ErrorIs(t, repo.DeleteGroupIfSoleMember(ctx, "g_missing", owner.ID), ErrStaleEdge)

	loaded, err := repo.GetGroupByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Members, 2)

	require.NoError(t, repo.RemoveMember(ctx, g.ID, member.ID))
	err = repo.RemoveMember(ctx, g.ID, member.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, repo.DeleteGroupIfSoleMember(ctx, g.ID, owner.ID))

	_, err = repo.GetGroupByID(ctx, g.ID)
	require.Error(t, err)
	assert.Equal(t, "group not found", err.Error())

	var leftovers int64
	require.NoError(t, db.Model(&models.GroupInvite{}).Where("group_id = ?", g.ID).Count(&leftovers).Error)
	assert.Zero(t, leftovers)
	require.NoError(t, db.Model(&models.GroupMember{}).Where("group_id = ?", g.ID).Count(&leftovers).Error)
	assert.Zero(t, leftovers)
}
