package repository

import (
	"context"
	"testing"
	"time"

	"kalamkart/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
)

type updateCommand struct {
	Updates []struct {
		Q bson.Raw `bson:"q"`
		U bson.A   `bson:"u"`
	} `bson:"updates"`
}

// singleUpdate asserts the call issued exactly one update and returns its pipeline as extended JSON.
func singleUpdate(mt *mtest.T) string {
	mt.Helper()

	events := mt.GetAllStartedEvents()
	require.Len(mt, events, 1)
	require.Equal(mt, "update", events[0].CommandName)

	var cmd updateCommand
	require.NoError(mt, bson.Unmarshal(events[0].Command, &cmd))
	require.Len(mt, cmd.Updates, 1)

	out, err := bson.MarshalExtJSON(bson.M{"u": cmd.Updates[0].U}, false, false)
	require.NoError(mt, err)
	return string(out)
}

func TestProductRepository_ReviewWritesCarryRating(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	modified := func(n int) bson.D {
		return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
	}

	mt.Run("add review", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll, zap.NewNop())
		review := &entity.Review{
			ID:        primitive.NewObjectID(),
			UserID:    primitive.NewObjectID(),
			Name:      "Sita",
			Rating:    4,
			Comment:   "$reviews is not a field path here",
			CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		}
		mt.AddMockResponses(modified(1))

		added, err := repo.AddReview(context.Background(), primitive.NewObjectID(), review)

		require.NoError(mt, err)
		assert.True(mt, added)
		pipeline := singleUpdate(mt)
		assert.Contains(mt, pipeline, "$concatArrays")
		assert.Contains(mt, pipeline, "$literal")
		assert.Contains(mt, pipeline, `"numReviews"`)
		assert.Contains(mt, pipeline, `"rating"`)
	})

	mt.Run("already reviewed", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll, zap.NewNop())
		mt.AddMockResponses(modified(0))

		added, err := repo.AddReview(context.Background(), primitive.NewObjectID(), &entity.Review{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Rating: 5})

		require.NoError(mt, err)
		assert.False(mt, added)
		singleUpdate(mt)
	})

	mt.Run("remove review", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll, zap.NewNop())
		mt.AddMockResponses(modified(1))

		removed, err := repo.RemoveReview(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())

		require.NoError(mt, err)
		assert.True(mt, removed)
		pipeline := singleUpdate(mt)
		assert.Contains(mt, pipeline, "$filter")
		assert.Contains(mt, pipeline, `"numReviews"`)
		assert.Contains(mt, pipeline, `"rating"`)
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll, zap.NewNop())
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 2, Message: "bad update"}))

		_, err := repo.AddReview(context.Background(), primitive.NewObjectID(), &entity.Review{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Rating: 3})

		require.Error(mt, err)
		singleUpdate(mt)
	})
}
