package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func postDoc(likes bson.A, likesCount int) bson.D {
	return bson.D{
		{Key: "_id", Value: "p_1"},
		{Key: "user_id", Value: "u_1"},
		{Key: "likes", Value: likes},
		{Key: "likes_count", Value: likesCount},
	}
}

func updated(doc bson.D) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc})
}

func unmatched() bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil})
}

func TestMongoPostConditionalUpdates(t *testing.T) {
	ctx := context.Background()
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("like when absent", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(updated(postDoc(bson.A{"u_2"}, 1)))

		liked, count, err := repo.ToggleLike(ctx, "p_1", "u_2")
		require.NoError(mt, err)
		assert.True(mt, liked)
		assert.Equal(mt, 1, count)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.Equal(mt, "u_2", evt.Command.Lookup("query", "likes", "$ne").StringValue())
		assert.EqualValues(mt, 1, evt.Command.Lookup("update", "$inc", "likes_count").AsInt64())
	})

	mt.Run("unlike when present", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(unmatched(), updated(postDoc(bson.A{}, 0)))

		liked, count, err := repo.ToggleLike(ctx, "p_1", "u_2")
		require.NoError(mt, err)
		assert.False(mt, liked)
		assert.Equal(mt, 0, count)

		mt.GetStartedEvent()
		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "u_2", evt.Command.Lookup("query", "likes").StringValue())
		assert.EqualValues(mt, -1, evt.Command.Lookup("update", "$inc", "likes_count").AsInt64())
	})

	mt.Run("missing post", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(unmatched(), unmatched(), mtest.CreateCursorResponse(0, "db.posts", mtest.FirstBatch))

		_, _, err := repo.ToggleLike(ctx, "p_missing", "u_2")
		require.Error(mt, err)
		assert.Equal(mt, apperr.KindNotFound, apperr.KindOf(err))
		assert.Equal(mt, "post not found", err.Error())
	})

	mt.Run("gives up when every update loses the race", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		for i := 0; i < toggleAttempts; i++ {
			mt.AddMockResponses(unmatched(), unmatched(), mtest.CreateCursorResponse(0, "db.posts", mtest.FirstBatch, postDoc(bson.A{}, 0)))
		}

		_, _, err := repo.ToggleLike(ctx, "p_1", "u_2")
		require.Error(mt, err)
		assert.Equal(mt, apperr.KindConflict, apperr.KindOf(err))
	})

	mt.Run("remove unknown comment", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(unmatched())

		_, err := repo.RemoveComment(ctx, "p_1", "c_missing")
		require.Error(mt, err)
		assert.Equal(mt, "comment not found", err.Error())
	})

	mt.Run("delete missing post", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.DeletePost(ctx, "p_missing")
		require.Error(mt, err)
		assert.Equal(mt, apperr.KindNotFound, apperr.KindOf(err))
	})
}
