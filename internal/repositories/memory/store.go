// Package memory is an in-process implementation of the repositories,
// holding every entity in maps keyed by id behind a single lock. It backs
// STORAGE=memory deployments and the service tests.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
)

type followKey struct {
	follower  string
	following string
}

type pairKey struct {
	low  string
	high string
}

type memberKey struct {
	group string
	user  string
}

// Store is the shared arena. The per-entity repositories are views over it
// so operations that touch several entities (an edge and two counts) happen
// under one critical section.
type Store struct {
	mu sync.RWMutex

	users         map[string]models.User
	follows       map[followKey]models.Follow
	friendships   map[pairKey]models.Friendship
	posts         map[string]models.Post
	groups        map[string]models.Group
	members       map[memberKey]models.GroupMember
	invites       map[memberKey]models.GroupInvite
	notifications []models.Notification

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:       map[string]models.User{},
		follows:     map[followKey]models.Follow{},
		friendships: map[pairKey]models.Friendship{},
		posts:       map[string]models.Post{},
		groups:      map[string]models.Group{},
		members:     map[memberKey]models.GroupMember{},
		invites:     map[memberKey]models.GroupInvite{},
		now:         time.Now,
	}
}

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }
func (s *Store) Follows() *FollowRepository { return &FollowRepository{s: s} }
func (s *Store) Friendships() *FriendshipRepository { return &FriendshipRepository{s: s} }
func (s *Store) Posts() *PostRepository { return &PostRepository{s: s} }
func (s *Store) Groups() *GroupRepository { return &GroupRepository{s: s} }
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s: s} }

// usersByID resolves ids to users sorted by name, skipping unknown ids.
// Callers hold the lock.
func (s *Store) usersByID(ids []string) []models.User {
	out := make([]models.User, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func pageOf[T any](items []T, page repositories.Page) ([]T, int64) {
	start, end := page.Window(len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, int64(len(items))
}

func lower(s string) string { return strings.ToLower(s) }
