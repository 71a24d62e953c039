package repositories

import (
	"context"
	"time"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// toggleAttempts bounds the retries of a like toggle that keeps losing the
// race between its two conditional updates.
const toggleAttempts = 3

// PostRepository defines the interface for post data operations. Likes and
// comments are embedded in the post, so each mutation below touches a
// single document and keeps its count in step with its set.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	UpdatePostText(ctx context.Context, id, rawText, generatedText string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, userID string) (bool, int, error)
	AddComment(ctx context.Context, postID string, comment models.Comment) (int, error)
	RemoveComment(ctx context.Context, postID, commentID string) (int, error)
	ListPosts(ctx context.Context, filter PostFilter, page Page) ([]models.Post, int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the indexes the feed and author queries rely on.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "visibility", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "group_ids", Value: 1}}},
		{Keys: bson.D{{Key: "target_friend_id", Value: 1}}},
	})
	return errors.Wrap(err, "create post indexes")
}

func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return errors.Wrap(err, "insert post")
}

func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		return nil, mongoErr(err, "get post")
	}
	return &post, nil
}

func (r *MongoPostRepository) UpdatePostText(ctx context.Context, id, rawText, generatedText string) (*models.Post, error) {
	update := bson.M{"$set": bson.M{
		"raw_text":       rawText,
		"generated_text": generatedText,
		"updated_at":     time.Now().UTC(),
	}}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, update, "update post")
}

// DeletePost removes the post together with its embedded comments.
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete post")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("post not found")
	}
	return nil
}

// ToggleLike adds userID to the likes set if absent, otherwise removes it.
// Each branch is a conditional single-document update, so the set and
// likes_count can never diverge.
func (r *MongoPostRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	for i := 0; i < toggleAttempts; i++ {
		post, err := r.findOneAndUpdate(ctx,
			bson.M{"_id": postID, "likes": bson.M{"$ne": userID}},
			bson.M{"$addToSet": bson.M{"likes": userID}, "$inc": bson.M{"likes_count": 1}},
			"like post")
		if err == nil {
			return true, post.LikesCount, nil
		}
		if !apperr.Is(err, apperr.KindNotFound) {
			return false, 0, err
		}

		post, err = r.findOneAndUpdate(ctx,
			bson.M{"_id": postID, "likes": userID},
			bson.M{"$pull": bson.M{"likes": userID}, "$inc": bson.M{"likes_count": -1}},
			"unlike post")
		if err == nil {
			return false, post.LikesCount, nil
		}
		if !apperr.Is(err, apperr.KindNotFound) {
			return false, 0, err
		}

		if _, err := r.GetPostByID(ctx, postID); err != nil {
			return false, 0, err
		}
	}
	return false, 0, apperr.Conflict("post is being liked concurrently, try again")
}

func (r *MongoPostRepository) AddComment(ctx context.Context, postID string, comment models.Comment) (int, error) {
	post, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": comment}, "$inc": bson.M{"comments_count": 1}},
		"add comment")
	if err != nil {
		return 0, err
	}
	return post.CommentsCount, nil
}

func (r *MongoPostRepository) RemoveComment(ctx context.Context, postID, commentID string) (int, error) {
	post, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": postID, "comments.id": commentID},
		bson.M{"$pull": bson.M{"comments": bson.M{"id": commentID}}, "$inc": bson.M{"comments_count": -1}},
		"remove comment")
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return 0, apperr.NotFound("comment not found")
		}
		return 0, err
	}
	return post.CommentsCount, nil
}

// ListPosts returns posts newest first. The visibility scope is translated
// into an $or over the four audience kinds.
func (r *MongoPostRepository) ListPosts(ctx context.Context, filter PostFilter, page Page) ([]models.Post, int64, error) {
	query := bson.M{}
	if filter.AuthorID != "" {
		query["user_id"] = filter.AuthorID
	}
	if s := filter.Scope; s != nil {
		query["$or"] = bson.A{
			bson.M{"user_id": s.ViewerID},
			bson.M{"visibility": models.VisibilityPublic},
			bson.M{"visibility": models.VisibilityFriendsOnly, "user_id": bson.M{"$in": nonNil(s.ConnectionIDs)}},
			bson.M{"visibility": models.VisibilityFriendOnly, "target_friend_id": s.ViewerID},
			bson.M{"visibility": models.VisibilityGroupsOnly, "group_ids": bson.M{"$in": nonNil(s.GroupIDs)}},
		}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count posts")
	}

	findOptions := options.Find().
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, errors.Wrap(err, "find posts")
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, 0, errors.Wrap(err, "decode posts")
	}
	return posts, total, nil
}

func (r *MongoPostRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M, op string) (*models.Post, error) {
	var post models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&post); err != nil {
		return nil, mongoErr(err, op)
	}
	return &post, nil
}

func mongoErr(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("post not found")
	}
	return errors.Wrap(err, op)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

var _ PostRepository = (*MongoPostRepository)(nil)
