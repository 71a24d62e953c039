package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/ids"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/newsflash"
	"github.com/anonto42/newsflash/backend/internal/notify"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/anonto42/newsflash/backend/pkg/logger"
)

// notificationPreview bounds the post text carried in a push body.
const notificationPreview = 120

type PostService struct {
	posts     repositories.PostRepository
	users     repositories.UserRepository
	audience  *AudienceResolver
	generator newsflash.Generator
	opts      newsflash.Options
	notifier  notify.Enqueuer
}

func NewPostService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	audience *AudienceResolver,
	generator newsflash.Generator,
	opts newsflash.Options,
	notifier notify.Enqueuer,
) *PostService {
	return &PostService{
		posts:     posts,
		users:     users,
		audience:  audience,
		generator: generator,
		opts:      opts,
		notifier:  notifier,
	}
}

// Create resolves the audience, generates the newsflash, stores the post and
// then fans it out. A rejected audience leaves nothing behind.
func (s *PostService) Create(ctx context.Context, authorID string, req *models.CreatePostRequest) (*models.Post, error) {
	rawText := strings.TrimSpace(req.RawText)
	if rawText == "" {
		return nil, apperr.Validation("rawText is required")
	}
	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load author")
	}

	res, err := s.audience.Resolve(ctx, req.Audience, author)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:             ids.Post(),
		UserID:         author.ID,
		AuthorName:     author.FullName,
		RawText:        rawText,
		GeneratedText:  s.generate(ctx, rawText, author.FullName),
		AudienceType:   res.Audience.Type,
		TargetFriendID: res.Audience.TargetFriendID,
		GroupIDs:       res.Audience.GroupIDs,
		Visibility:     res.Visibility,
		Likes:          []string{},
		Comments:       []models.Comment{},
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, apperr.Wrap(err, "failed to create post")
	}

	logger.Ctx(ctx).Info().
		Str("post_id", post.ID).
		Str("user_id", author.ID).
		Str("visibility", string(post.Visibility)).
		Int("recipients", len(res.Recipients)).
		Msg("post created")

	if len(res.Recipients) > 0 {
		s.notifier.Enqueue(notify.Task{
			Type:       models.NotificationNewPost,
			ActorID:    author.ID,
			Title:      fmt.Sprintf("New newsflash from %s", author.FullName),
			Body:       preview(post.GeneratedText),
			Data:       map[string]string{"type": models.NotificationNewPost, "postId": post.ID, "userId": author.ID},
			Recipients: notify.RecipientsOf(res.Recipients...),
		})
	}
	return post, nil
}

// Update rewrites the text of actorID's own post. The newsflash is only
// regenerated when the text actually changed.
func (s *PostService) Update(ctx context.Context, postID, actorID, rawText string) (*models.Post, error) {
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return nil, apperr.Validation("rawText is required")
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load post")
	}
	if post.UserID != actorID {
		return nil, apperr.Forbidden("you can only edit your own posts")
	}
	if post.RawText == rawText {
		return post, nil
	}

	updated, err := s.posts.UpdatePostText(ctx, postID, rawText, s.generate(ctx, rawText, post.AuthorName))
	if err != nil {
		return nil, apperr.Wrap(err, "failed to update post")
	}
	return updated, nil
}

// Delete removes actorID's own post together with its likes and comments.
func (s *PostService) Delete(ctx context.Context, postID, actorID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return apperr.Wrap(err, "failed to load post")
	}
	if post.UserID != actorID {
		return apperr.Forbidden("you can only delete your own posts")
	}
	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return apperr.Wrap(err, "failed to delete post")
	}
	logger.Ctx(ctx).Info().Str("post_id", postID).Str("user_id", actorID).Msg("post deleted")
	return nil
}

// Get returns the post if viewerID may see it. Posts outside the viewer's
// audience are reported as missing.
func (s *PostService) Get(ctx context.Context, postID, viewerID string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load post")
	}
	ok, err := s.audience.CanView(ctx, post, viewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("post not found")
	}
	return post, nil
}

// Feed lists every post viewerID may see, newest first.
func (s *PostService) Feed(ctx context.Context, viewerID string, page repositories.Page) ([]models.Post, int64, error) {
	scope, err := s.audience.FeedScope(ctx, viewerID)
	if err != nil {
		return nil, 0, err
	}
	posts, total, err := s.posts.ListPosts(ctx, repositories.PostFilter{Scope: scope}, page)
	if err != nil {
		return nil, 0, apperr.Wrap(err, "failed to load feed")
	}
	return postsOrEmpty(posts), total, nil
}

// ByUser lists authorID's posts that viewerID may see.
func (s *PostService) ByUser(ctx context.Context, authorID, viewerID string, page repositories.Page) ([]models.Post, int64, error) {
	if _, err := s.users.GetUserByID(ctx, authorID); err != nil {
		return nil, 0, apperr.Wrap(err, "failed to load user")
	}
	scope, err := s.audience.FeedScope(ctx, viewerID)
	if err != nil {
		return nil, 0, err
	}
	posts, total, err := s.posts.ListPosts(ctx, repositories.PostFilter{AuthorID: authorID, Scope: scope}, page)
	if err != nil {
		return nil, 0, apperr.Wrap(err, "failed to list posts")
	}
	return postsOrEmpty(posts), total, nil
}

// generate never fails: a generator error falls back to the deterministic
// headline.
func (s *PostService) generate(ctx context.Context, rawText, authorName string) string {
	text, err := s.generator.Generate(ctx, rawText, authorName, s.opts)
	if err != nil || strings.TrimSpace(text) == "" {
		logger.Ctx(ctx).Warn().Err(err).Msg("newsflash generation failed, using fallback")
		return newsflash.Headline(rawText, authorName, s.opts)
	}
	return text
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= notificationPreview {
		return text
	}
	return strings.TrimSpace(string(runes[:notificationPreview-1])) + "…"
}

func postsOrEmpty(posts []models.Post) []models.Post {
	if posts == nil {
		return []models.Post{}
	}
	return posts
}
