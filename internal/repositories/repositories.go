package repositories

import (
	"context"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrEdgeExists is returned when inserting an edge (friendship, invite)
	// whose key is already taken.
	ErrEdgeExists = errors.New("edge already exists")
	// ErrStaleEdge is returned when a compare-and-swap transition finds the
	// edge no longer in the expected state.
	ErrStaleEdge = errors.New("edge is not in the expected state")
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page selects a 1-based page of a listing.
type Page struct {
	Page  int
	Limit int
}

// NewPage clamps page and limit into range.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Window returns the [start, end) slice bounds of the page over total items.
func (p Page) Window(total int) (int, int) {
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}

// VisibilityScope describes what a viewer may read: their own posts, public
// posts, "friends" posts from ConnectionIDs, "friend" posts targeted at them,
// and "groups" posts sharing one of GroupIDs.
type VisibilityScope struct {
	ViewerID      string
	ConnectionIDs []string
	GroupIDs      []string
}

// Allows evaluates the scope against a single post.
func (s *VisibilityScope) Allows(p *models.Post) bool {
	if p.UserID == s.ViewerID {
		return true
	}
	switch p.Visibility {
	case models.VisibilityPublic:
		return true
	case models.VisibilityFriendsOnly:
		return contains(s.ConnectionIDs, p.UserID)
	case models.VisibilityFriendOnly:
		return p.TargetFriendID == s.ViewerID
	case models.VisibilityGroupsOnly:
		for _, id := range p.GroupIDs {
			if contains(s.GroupIDs, id) {
				return true
			}
		}
	}
	return false
}

// PostFilter narrows a post listing. A nil Scope means no visibility
// restriction.
type PostFilter struct {
	AuthorID string
	Scope    *VisibilityScope
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// gormErr maps GORM failures onto the error taxonomy.
func gormErr(err error, notFoundMsg, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("%s", notFoundMsg)
	default:
		return errors.Wrap(err, op)
	}
}

// pageOfUsers loads one page of the users whose ids sub selects, ordered by
// name, with the total count.
func pageOfUsers(ctx context.Context, db *gorm.DB, sub *gorm.DB, page Page) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)
	q := db.WithContext(ctx).Model(&models.User{}).Where("id IN (?)", sub).Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}
	err := q.Order("full_name").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error
	return users, total, errors.Wrap(err, "list users")
}

// txErr passes taxonomy errors raised inside a transaction through and adds
// context to everything else.
func txErr(err error, op string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return errors.Wrap(err, op)
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
