package memory

import (
	"context"
	"sort"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
)

type PostRepository struct{ s *Store }

var _ repositories.PostRepository = (*PostRepository)(nil)

// clonePost copies the slices so callers never alias arena state.
func clonePost(p models.Post) models.Post {
	p.Likes = append([]string{}, p.Likes...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	if p.GroupIDs != nil {
		p.GroupIDs = append([]string{}, p.GroupIDs...)
	}
	return p
}

func (r *PostRepository) CreatePost(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[post.ID]; ok {
		return apperr.Conflict("post already exists")
	}
	now := r.s.now()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	r.s.posts[post.ID] = clonePost(*post)
	return nil
}

func (r *PostRepository) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, apperr.NotFound("post not found")
	}
	p = clonePost(p)
	return &p, nil
}

func (r *PostRepository) UpdatePostText(_ context.Context, id, rawText, generatedText string) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, apperr.NotFound("post not found")
	}
	p.RawText = rawText
	p.GeneratedText = generatedText
	p.UpdatedAt = r.s.now()
	r.s.posts[id] = p
	p = clonePost(p)
	return &p, nil
}

func (r *PostRepository) DeletePost(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return apperr.NotFound("post not found")
	}
	delete(r.s.posts, id)
	return nil
}

func (r *PostRepository) ToggleLike(_ context.Context, postID, userID string) (bool, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[postID]
	if !ok {
		return false, 0, apperr.NotFound("post not found")
	}
	liked := false
	likes := make([]string, 0, len(p.Likes)+1)
	for _, id := range p.Likes {
		if id == userID {
			liked = true
			continue
		}
		likes = append(likes, id)
	}
	if !liked {
		likes = append(likes, userID)
	}
	p.Likes = likes
	p.LikesCount = len(likes)
	r.s.posts[postID] = p
	return !liked, p.LikesCount, nil
}

func (r *PostRepository) AddComment(_ context.Context, postID string, comment models.Comment) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[postID]
	if !ok {
		return 0, apperr.NotFound("post not found")
	}
	p.Comments = append(append([]models.Comment{}, p.Comments...), comment)
	p.CommentsCount = len(p.Comments)
	r.s.posts[postID] = p
	return p.CommentsCount, nil
}

func (r *PostRepository) RemoveComment(_ context.Context, postID, commentID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[postID]
	if !ok {
		return 0, apperr.NotFound("post not found")
	}
	kept := make([]models.Comment, 0, len(p.Comments))
	for _, c := range p.Comments {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(p.Comments) {
		return 0, apperr.NotFound("comment not found")
	}
	p.Comments = kept
	p.CommentsCount = len(kept)
	r.s.posts[postID] = p
	return p.CommentsCount, nil
}

func (r *PostRepository) ListPosts(_ context.Context, filter repositories.PostFilter, page repositories.Page) ([]models.Post, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []models.Post
	for _, p := range r.s.posts {
		if filter.AuthorID != "" && p.UserID != filter.AuthorID {
			continue
		}
		if filter.Scope != nil && !filter.Scope.Allows(&p) {
			continue
		}
		matched = append(matched, clonePost(p))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	posts, total := pageOf(matched, page)
	return posts, total, nil
}
