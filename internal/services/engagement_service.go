package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/ids"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/notify"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/anonto42/newsflash/backend/pkg/logger"
)

const (
	ActionLiked   = "liked"
	ActionUnliked = "unliked"
)

// EngagementService handles likes and comments. The set and its count
// change in one storage operation; this layer adds visibility and
// ownership rules and the author notifications.
type EngagementService struct {
	posts    repositories.PostRepository
	users    repositories.UserRepository
	audience *AudienceResolver
	notifier notify.Enqueuer
}

func NewEngagementService(posts repositories.PostRepository, users repositories.UserRepository, audience *AudienceResolver, notifier notify.Enqueuer) *EngagementService {
	return &EngagementService{posts: posts, users: users, audience: audience, notifier: notifier}
}

func (s *EngagementService) ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error) {
	actor, post, err := s.visiblePost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	liked, count, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to toggle like")
	}

	res := &models.LikeResult{IsLiked: liked, LikesCount: count, Action: ActionUnliked}
	if liked {
		res.Action = ActionLiked
		s.notifyAuthor(ctx, post, actor, models.NotificationLike, "New like",
			fmt.Sprintf("%s liked your post", actor.FullName), nil)
	}
	return res, nil
}

// AddComment appends a comment and returns it with the post's new comment
// count.
func (s *EngagementService) AddComment(ctx context.Context, postID, userID, text string) (*models.Comment, int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, 0, apperr.Validation("comment text is required")
	}
	if utf8.RuneCountInString(text) > models.MaxCommentLength {
		return nil, 0, apperr.Validation("comment must be at most %d characters", models.MaxCommentLength)
	}

	actor, post, err := s.visiblePost(ctx, postID, userID)
	if err != nil {
		return nil, 0, err
	}

	comment := models.Comment{
		ID:        ids.Comment(),
		PostID:    postID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	count, err := s.posts.AddComment(ctx, postID, comment)
	if err != nil {
		return nil, 0, apperr.Wrap(err, "failed to add comment")
	}

	s.notifyAuthor(ctx, post, actor, models.NotificationComment, "New comment",
		fmt.Sprintf("%s commented on your post", actor.FullName), map[string]string{"commentId": comment.ID})
	return &comment, count, nil
}

// DeleteComment removes a comment on behalf of its author and returns the
// post's new comment count.
func (s *EngagementService) DeleteComment(ctx context.Context, postID, commentID, requesterID string) (int, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return 0, apperr.Wrap(err, "failed to load post")
	}

	var comment *models.Comment
	for i := range post.Comments {
		if post.Comments[i].ID == commentID {
			comment = &post.Comments[i]
			break
		}
	}
	if comment == nil {
		return 0, apperr.NotFound("comment not found")
	}
	if comment.UserID != requesterID {
		return 0, apperr.Forbidden("you can only delete your own comments")
	}

	count, err := s.posts.RemoveComment(ctx, postID, commentID)
	if err != nil {
		return 0, apperr.Wrap(err, "failed to delete comment")
	}
	return count, nil
}

// Comments lists a post's comments, oldest first.
func (s *EngagementService) Comments(ctx context.Context, postID, viewerID string) ([]models.Comment, error) {
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
	if post.Comments == nil {
		return []models.Comment{}, nil
	}
	return post.Comments, nil
}

// visiblePost loads the acting user and a post they are allowed to see.
// Invisible posts are reported as missing.
func (s *EngagementService) visiblePost(ctx context.Context, postID, userID string) (*models.User, *models.Post, error) {
	actor, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, apperr.Wrap(err, "failed to load user")
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, nil, apperr.Wrap(err, "failed to load post")
	}
	ok, err := s.audience.CanView(ctx, post, userID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, apperr.NotFound("post not found")
	}
	return actor, post, nil
}

func (s *EngagementService) notifyAuthor(ctx context.Context, post *models.Post, actor *models.User, typ, title, body string, extra map[string]string) {
	if post.UserID == actor.ID {
		return
	}
	author, err := s.users.GetUserByID(ctx, post.UserID)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("post_id", post.ID).Msg("post author not found, skipping notification")
		return
	}
	data := map[string]string{"type": typ, "postId": post.ID, "userId": actor.ID}
	for k, v := range extra {
		data[k] = v
	}
	s.notifier.Enqueue(notify.Task{
		Type:       typ,
		ActorID:    actor.ID,
		Title:      title,
		Body:       body,
		Data:       data,
		Recipients: notify.RecipientsOf(*author),
		Options:    notify.Options{CollapseKey: typ + ":" + post.ID},
	})
}
