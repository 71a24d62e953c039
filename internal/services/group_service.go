package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/ids"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/notify"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/anonto42/newsflash/backend/pkg/logger"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
)

// GroupService keeps the group invariants: the owner is always a member,
// invites never name a member, and the owner cannot walk away from other
// members.
type GroupService struct {
	groups   repositories.GroupRepository
	users    repositories.UserRepository
	notifier notify.Enqueuer
}

func NewGroupService(groups repositories.GroupRepository, users repositories.UserRepository, notifier notify.Enqueuer) *GroupService {
	return &GroupService{groups: groups, users: users, notifier: notifier}
}

func (s *GroupService) Create(ctx context.Context, ownerID string, req *models.CreateGroupRequest) (*models.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("group name is required")
	}
	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		return nil, apperr.Wrap(err, "failed to load user")
	}

	group := &models.Group{
		ID:          ids.Group(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		OwnerID:     ownerID,
		Settings:    datatypes.NewJSONType(models.GroupSettings{AllowMemberInvites: req.AllowMemberInvites}),
	}
	if err := s.groups.CreateGroup(ctx, group); err != nil {
		return nil, apperr.Wrap(err, "failed to create group")
	}
	logger.Ctx(ctx).Info().Str("group_id", group.ID).Str("owner_id", ownerID).Msg("group created")
	return group, nil
}

// Get returns the group to its members and invitees.
func (s *GroupService) Get(ctx context.Context, groupID, viewerID string) (*models.Group, error) {
	group, err := s.groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load group")
	}
	if !group.IsMember(viewerID) && !group.IsInvited(viewerID) {
		return nil, apperr.Forbidden("you are not a member of this group")
	}
	return group, nil
}

func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]models.Group, error) {
	groups, err := s.groups.GetGroupsForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list groups")
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

// Invite lets the owner, or any member when the group allows it, invite a
// user who is not yet a member.
func (s *GroupService) Invite(ctx context.Context, groupID, inviterID, inviteeID string) (*models.GroupInvite, error) {
	if inviterID == inviteeID {
		return nil, apperr.SelfReference("cannot invite yourself")
	}
	group, err := s.groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load group")
	}
	if !group.IsMember(inviterID) {
		return nil, apperr.Forbidden("you are not a member of this group")
	}
	if group.OwnerID != inviterID && !group.Settings.Data().AllowMemberInvites {
		return nil, apperr.Forbidden("only the owner can invite members")
	}
	invitee, err := s.users.GetUserByID(ctx, inviteeID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load user")
	}
	if group.IsMember(inviteeID) {
		return nil, apperr.Conflict("user is already a member of this group")
	}
	if group.IsInvited(inviteeID) {
		return nil, apperr.Conflict("user is already invited to this group")
	}

	invite := &models.GroupInvite{GroupID: groupID, UserID: inviteeID, InvitedBy: inviterID, CreatedAt: time.Now()}
	if err := s.groups.CreateInvite(ctx, invite); err != nil {
		return nil, edgeErr(err, "user is already invited to this group", "failed to create invite")
	}

	s.notifier.Enqueue(notify.Task{
		Type:       models.NotificationGroupInvite,
		ActorID:    inviterID,
		Title:      "Group invitation",
		Body:       fmt.Sprintf("You were invited to join %s", group.Name),
		Data:       map[string]string{"type": models.NotificationGroupInvite, "groupId": groupID, "userId": inviterID},
		Recipients: notify.RecipientsOf(*invitee),
	})
	return invite, nil
}

func (s *GroupService) AcceptInvite(ctx context.Context, groupID, userID string) (*models.Group, error) {
	if _, err := s.groups.GetGroupByID(ctx, groupID); err != nil {
		return nil, apperr.Wrap(err, "failed to load group")
	}
	if err := s.groups.AcceptInvite(ctx, groupID, userID); err != nil {
		return nil, apperr.Wrap(err, "failed to accept invite")
	}
	group, err := s.groups.GetGroupByID(ctx, groupID)
	return group, apperr.Wrap(err, "failed to load group")
}

func (s *GroupService) DeclineInvite(ctx context.Context, groupID, userID string) error {
	if _, err := s.groups.GetGroupByID(ctx, groupID); err != nil {
		return apperr.Wrap(err, "failed to load group")
	}
	return apperr.Wrap(s.groups.DeleteInvite(ctx, groupID, userID), "failed to decline invite")
}

// Leave removes userID from the group. An owner who is the last member
// deletes the group instead; deleted reports which happened.
func (s *GroupService) Leave(ctx context.Context, groupID, userID string) (deleted bool, err error) {
	group, err := s.groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return false, apperr.Wrap(err, "failed to load group")
	}
	if !group.IsMember(userID) {
		return false, apperr.NotFound("not a member of this group")
	}

	if group.OwnerID == userID {
		if len(group.Members) > 1 {
			return false, apperr.Forbidden("must transfer ownership before leaving")
		}
		// Membership may have changed since the read; the repository rechecks.
		if err := s.groups.DeleteGroupIfSoleMember(ctx, groupID, userID); err != nil {
			if errors.Is(err, repositories.ErrStaleEdge) {
				return false, apperr.Forbidden("must transfer ownership before leaving")
			}
			return false, apperr.Wrap(err, "failed to delete group")
		}
		logger.Ctx(ctx).Info().Str("group_id", groupID).Msg("owner left as last member, group deleted")
		return true, nil
	}

	if err := s.groups.RemoveMember(ctx, groupID, userID); err != nil {
		return false, apperr.Wrap(err, "failed to leave group")
	}
	return false, nil
}

func (s *GroupService) TransferOwnership(ctx context.Context, groupID, ownerID, newOwnerID string) (*models.Group, error) {
	group, err := s.groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load group")
	}
	if group.OwnerID != ownerID {
		return nil, apperr.Forbidden("only the owner can transfer ownership")
	}
	if newOwnerID == ownerID {
		return nil, apperr.SelfReference("you already own this group")
	}
	if !group.IsMember(newOwnerID) {
		return nil, apperr.Validation("new owner must be a member of this group")
	}
	if err := s.groups.TransferOwnership(ctx, groupID, ownerID, newOwnerID); err != nil {
		return nil, edgeErr(err, "group ownership changed, try again", "failed to transfer ownership")
	}
	group, err = s.groups.GetGroupByID(ctx, groupID)
	return group, apperr.Wrap(err, "failed to load group")
}

// RemoveMember lets the owner remove anyone but themselves.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, ownerID, memberID string) error {
	group, err := s.groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return apperr.Wrap(err, "failed to load group")
	}
	if group.OwnerID != ownerID {
		return apperr.Forbidden("only the owner can remove members")
	}
	if memberID == ownerID {
		return apperr.SelfReference("the owner cannot remove themselves")
	}
	return apperr.Wrap(s.groups.RemoveMember(ctx, groupID, memberID), "failed to remove member")
}
