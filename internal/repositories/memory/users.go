package memory

import (
	"context"
	"strings"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
)

type UserRepository struct{ s *Store }

var _ repositories.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) CreateUser(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; ok {
		return apperr.Conflict("user already exists")
	}
	for _, u := range r.s.users {
		if lower(u.Email) == lower(user.Email) {
			return apperr.Conflict("a user with this email already exists")
		}
		if user.FirebaseUID != nil && u.FirebaseUID != nil && *u.FirebaseUID == *user.FirebaseUID {
			return apperr.Conflict("a user with this firebase uid already exists")
		}
	}
	now := r.s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &u, nil
}

func (r *UserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return lower(u.Email) == lower(email) })
}

func (r *UserRepository) GetUserByFirebaseUID(_ context.Context, firebaseUID string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.FirebaseUID != nil && *u.FirebaseUID == firebaseUID })
}

func (r *UserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(&u) {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r *UserRepository) GetUsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.usersByID(ids), nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.users[user.ID]
	if !ok {
		return apperr.NotFound("user not found")
	}
	for id, u := range r.s.users {
		if id != user.ID && lower(u.Email) == lower(user.Email) {
			return apperr.Conflict("a user with this email already exists")
		}
	}
	cur.FullName = user.FullName
	cur.Email = user.Email
	cur.FirebaseUID = user.FirebaseUID
	cur.UpdatedAt = r.s.now()
	r.s.users[user.ID] = cur
	*user = cur
	return nil
}

func (r *UserRepository) SetPushToken(_ context.Context, id, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.PushToken = token
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return nil
}

func (r *UserRepository) SearchUsers(_ context.Context, query string, limit int) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := lower(query)
	var matched []string
	for id, u := range r.s.users {
		if strings.Contains(lower(u.FullName), q) || strings.Contains(lower(u.Email), q) {
			matched = append(matched, id)
		}
	}
	out := r.s.usersByID(matched)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
