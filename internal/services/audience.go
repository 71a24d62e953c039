package services

import (
	"context"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/samber/lo"
)

// Resolution is the outcome of resolving a post's audience. Recipients are
// everyone to notify; delivery decides who also gets a push.
type Resolution struct {
	Audience   models.Audience
	Visibility models.Visibility
	Recipients []models.User
}

// AudienceResolver decides who may see a post and who is told about it.
type AudienceResolver struct {
	graph  Graph
	users  repositories.UserRepository
	groups repositories.GroupRepository
}

func NewAudienceResolver(graph Graph, users repositories.UserRepository, groups repositories.GroupRepository) *AudienceResolver {
	return &AudienceResolver{graph: graph, users: users, groups: groups}
}

// Resolve validates the audience for author and computes the post's
// visibility and recipients. It fails before anything is written.
func (r *AudienceResolver) Resolve(ctx context.Context, audience models.Audience, author *models.User) (*Resolution, error) {
	audience = audience.Normalize()
	if problem := audience.Problem(); problem != "" {
		return nil, apperr.Validation("%s", problem)
	}

	res := &Resolution{Audience: audience}
	switch audience.Type {
	case models.AudiencePublic:
		res.Visibility = models.VisibilityPublic

	case models.AudienceFriends:
		members, err := r.graph.Audience(ctx, author.ID)
		if err != nil {
			return nil, err
		}
		res.Visibility = models.VisibilityFriendsOnly
		res.Recipients = without(members, author.ID)

	case models.AudienceFriend:
		if audience.TargetFriendID == author.ID {
			return nil, apperr.SelfReference("cannot post to yourself")
		}
		target, err := r.users.GetUserByID(ctx, audience.TargetFriendID)
		if err != nil {
			return nil, apperr.Wrap(err, "failed to load target friend")
		}
		connected, err := r.graph.IsConnected(ctx, author.ID, target.ID)
		if err != nil {
			return nil, err
		}
		if !connected {
			return nil, apperr.Forbidden("you can only post to friends")
		}
		res.Visibility = models.VisibilityFriendOnly
		res.Recipients = []models.User{*target}

	case models.AudienceGroups:
		n, err := r.groups.CountMemberships(ctx, author.ID, audience.GroupIDs)
		if err != nil {
			return nil, apperr.Wrap(err, "failed to check group membership")
		}
		if n != int64(len(audience.GroupIDs)) {
			return nil, apperr.Forbidden("access denied to one or more groups")
		}
		members, err := r.groups.GetMembers(ctx, audience.GroupIDs)
		if err != nil {
			return nil, apperr.Wrap(err, "failed to load group members")
		}
		res.Visibility = models.VisibilityGroupsOnly
		res.Recipients = without(members, author.ID)
	}
	return res, nil
}

// CanView reports whether viewerID may read post. An empty viewer only sees
// public posts.
func (r *AudienceResolver) CanView(ctx context.Context, post *models.Post, viewerID string) (bool, error) {
	if post.Visibility == models.VisibilityPublic || (viewerID != "" && post.UserID == viewerID) {
		return true, nil
	}
	if viewerID == "" {
		return false, nil
	}
	switch post.Visibility {
	case models.VisibilityFriendsOnly:
		return r.graph.IsConnected(ctx, post.UserID, viewerID)
	case models.VisibilityFriendOnly:
		return post.TargetFriendID == viewerID, nil
	case models.VisibilityGroupsOnly:
		n, err := r.groups.CountMemberships(ctx, viewerID, post.GroupIDs)
		if err != nil {
			return false, apperr.Wrap(err, "failed to check group membership")
		}
		return n > 0, nil
	}
	return false, nil
}

// FeedScope collects what the post store needs to filter a listing for
// viewerID.
func (r *AudienceResolver) FeedScope(ctx context.Context, viewerID string) (*repositories.VisibilityScope, error) {
	scope := &repositories.VisibilityScope{ViewerID: viewerID}
	if viewerID == "" {
		return scope, nil
	}
	connectionIDs, err := r.graph.ConnectionIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	groupIDs, err := r.groups.GetGroupIDsForUser(ctx, viewerID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list groups")
	}
	scope.ConnectionIDs = connectionIDs
	scope.GroupIDs = groupIDs
	return scope, nil
}

func without(users []models.User, userID string) []models.User {
	return lo.Filter(users, func(u models.User, _ int) bool { return u.ID != userID })
}
