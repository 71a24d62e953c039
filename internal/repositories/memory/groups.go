package memory

import (
	"context"
	"sort"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
)

type GroupRepository struct{ s *Store }

var _ repositories.GroupRepository = (*GroupRepository)(nil)

// assemble attaches the member and invite rows to a stored group. Callers
// hold the lock.
func (r *GroupRepository) assemble(g models.Group) models.Group {
	g.Members = nil
	g.Invites = nil
	for k, m := range r.s.members {
		if k.group == g.ID {
			g.Members = append(g.Members, m)
		}
	}
	for k, inv := range r.s.invites {
		if k.group == g.ID {
			g.Invites = append(g.Invites, inv)
		}
	}
	sort.Slice(g.Members, func(i, j int) bool { return g.Members[i].JoinedAt.Before(g.Members[j].JoinedAt) })
	sort.Slice(g.Invites, func(i, j int) bool { return g.Invites[i].CreatedAt.Before(g.Invites[j].CreatedAt) })
	return g
}

func (r *GroupRepository) CreateGroup(_ context.Context, group *models.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.groups[group.ID]; ok {
		return apperr.Conflict("group already exists")
	}
	now := r.s.now()
	group.CreatedAt = now
	group.UpdatedAt = now
	owner := models.GroupMember{GroupID: group.ID, UserID: group.OwnerID, Role: models.GroupRoleOwner, JoinedAt: now}
	r.s.members[memberKey{group: group.ID, user: group.OwnerID}] = owner

	stored := *group
	stored.Members, stored.Invites = nil, nil
	r.s.groups[group.ID] = stored
	group.Members = []models.GroupMember{owner}
	return nil
}

func (r *GroupRepository) GetGroupByID(_ context.Context, id string) (*models.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.groups[id]
	if !ok {
		return nil, apperr.NotFound("group not found")
	}
	g = r.assemble(g)
	return &g, nil
}

func (r *GroupRepository) GetGroupsForUser(_ context.Context, userID string) ([]models.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Group
	for _, id := range r.groupIDsFor(userID) {
		g := r.assemble(r.s.groups[id])
		g.Invites = nil
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *GroupRepository) GetGroupIDsForUser(_ context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.groupIDsFor(userID), nil
}

func (r *GroupRepository) groupIDsFor(userID string) []string {
	var out []string
	for k := range r.s.members {
		if k.user == userID {
			out = append(out, k.group)
		}
	}
	return out
}

func (r *GroupRepository) CountMemberships(_ context.Context, userID string, groupIDs []string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, id := range groupIDs {
		if _, ok := r.s.members[memberKey{group: id, user: userID}]; ok {
			n++
		}
	}
	return n, nil
}

func (r *GroupRepository) GetMembers(_ context.Context, groupIDs []string) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(groupIDs))
	for _, id := range groupIDs {
		wanted[id] = struct{}{}
	}
	var userIDs []string
	for k := range r.s.members {
		if _, ok := wanted[k.group]; ok {
			userIDs = append(userIDs, k.user)
		}
	}
	return r.s.usersByID(userIDs), nil
}

func (r *GroupRepository) CreateInvite(_ context.Context, invite *models.GroupInvite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.groups[invite.GroupID]; !ok {
		return apperr.NotFound("group not found")
	}
	key := memberKey{group: invite.GroupID, user: invite.UserID}
	if _, ok := r.s.invites[key]; ok {
		return repositories.ErrEdgeExists
	}
	invite.CreatedAt = r.s.now()
	r.s.invites[key] = *invite
	return nil
}

func (r *GroupRepository) AcceptInvite(_ context.Context, groupID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := memberKey{group: groupID, user: userID}
	if _, ok := r.s.invites[key]; !ok {
		return apperr.NotFound("invite not found")
	}
	delete(r.s.invites, key)
	r.s.members[key] = models.GroupMember{GroupID: groupID, UserID: userID, Role: models.GroupRoleMember, JoinedAt: r.s.now()}
	return nil
}

func (r *GroupRepository) DeleteInvite(_ context.Context, groupID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := memberKey{group: groupID, user: userID}
	if _, ok := r.s.invites[key]; !ok {
		return apperr.NotFound("invite not found")
	}
	delete(r.s.invites, key)
	return nil
}

func (r *GroupRepository) RemoveMember(_ context.Context, groupID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := memberKey{group: groupID, user: userID}
	if _, ok := r.s.members[key]; !ok {
		return apperr.NotFound("not a member of this group")
	}
	delete(r.s.members, key)
	return nil
}

func (r *GroupRepository) TransferOwnership(_ context.Context, groupID, fromID, toID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.groups[groupID]
	if !ok || g.OwnerID != fromID {
		return repositories.ErrStaleEdge
	}
	toKey := memberKey{group: groupID, user: toID}
	to, ok := r.s.members[toKey]
	if !ok {
		return apperr.NotFound("new owner is not a member of this group")
	}
	fromKey := memberKey{group: groupID, user: fromID}
	if from, ok := r.s.members[fromKey]; ok {
		from.Role = models.GroupRoleMember
		r.s.members[fromKey] = from
	}
	to.Role = models.GroupRoleOwner
	r.s.members[toKey] = to
	g.OwnerID = toID
	g.UpdatedAt = r.s.now()
	r.s.groups[groupID] = g
	return nil
}

func (r *GroupRepository) DeleteGroupIfSoleMember(_ context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.groups[id]
	if !ok || g.OwnerID != ownerID {
		return repositories.ErrStaleEdge
	}
	members := 0
	for k := range r.s.members {
		if k.group == id {
			members++
		}
	}
	if members != 1 {
		return repositories.ErrStaleEdge
	}
	for k := range r.s.members {
		if k.group == id {
			delete(r.s.members, k)
		}
	}
	for k := range r.s.invites {
		if k.group == id {
			delete(r.s.invites, k)
		}
	}
	delete(r.s.groups, id)
	return nil
}
