package services

import (
	"context"
	"testing"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/ids"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/newsflash"
	"github.com/anonto42/newsflash/backend/internal/notify"
	"github.com/anonto42/newsflash/backend/internal/notify/notifytest"
	"github.com/anonto42/newsflash/backend/internal/repositories/memory"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx         context.Context
	store       *memory.Store
	recorder    *notifytest.Recorder
	friendships *FriendshipService
	follows     *FollowService
	audience    *AudienceResolver
	posts       *PostService
	engagement  *EngagementService
	groups      *GroupService
}

// newFixture wires every service over one memory store. followModel picks
// the graph behind audiences and feeds.
func newFixture(t *testing.T, followModel bool) *fixture {
	t.Helper()

	store := memory.NewStore()
	rec := &notifytest.Recorder{}
	f := &fixture{
		ctx:         context.Background(),
		store:       store,
		recorder:    rec,
		friendships: NewFriendshipService(store.Users(), store.Friendships(), rec),
		follows:     NewFollowService(store.Users(), store.Follows(), rec),
		groups:      NewGroupService(store.Groups(), store.Users(), rec),
	}

	var graph Graph = f.friendships
	if followModel {
		graph = f.follows
	}
	f.audience = NewAudienceResolver(graph, store.Users(), store.Groups())
	f.posts = NewPostService(store.Posts(), store.Users(), f.audience, newsflash.Fallback{}, newsflash.Options{}, rec)
	f.engagement = NewEngagementService(store.Posts(), store.Users(), f.audience, rec)
	return f
}

func (f *fixture) user(t *testing.T, name, pushToken string) models.User {
	t.Helper()
	u := &models.User{
		ID:        ids.User(),
		FullName:  name,
		Email:     name + "@example.com",
		PushToken: pushToken,
	}
	require.NoError(t, f.store.Users().CreateUser(f.ctx, u))
	return *u
}

func (f *fixture) reload(t *testing.T, id string) models.User {
	t.Helper()
	u, err := f.store.Users().GetUserByID(f.ctx, id)
	require.NoError(t, err)
	return *u
}

func (f *fixture) befriend(t *testing.T, a, b models.User) {
	t.Helper()
	_, err := f.friendships.SendRequest(f.ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = f.friendships.Accept(f.ctx, a.ID, b.ID)
	require.NoError(t, err)
}

func (f *fixture) post(t *testing.T, author models.User, audience models.Audience) *models.Post {
	t.Helper()
	p, err := f.posts.Create(f.ctx, author.ID, &models.CreatePostRequest{RawText: "something happened", Audience: audience})
	require.NoError(t, err)
	return p
}

func (f *fixture) group(t *testing.T, owner models.User, members ...models.User) *models.Group {
	t.Helper()
	g, err := f.groups.Create(f.ctx, owner.ID, &models.CreateGroupRequest{Name: owner.FullName + "'s group"})
	require.NoError(t, err)
	for _, m := range members {
		_, err := f.groups.Invite(f.ctx, g.ID, owner.ID, m.ID)
		require.NoError(t, err)
		_, err = f.groups.AcceptInvite(f.ctx, g.ID, m.ID)
		require.NoError(t, err)
	}
	return g
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
}

func recipientIDs(rs []notify.Recipient) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.UserID)
	}
	return out
}
