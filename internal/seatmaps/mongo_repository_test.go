package seatmaps

import (
	"context"
	"testing"
	"time"

	"seatline/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func countResponse(mt *mtest.T, n int64) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func updateResponse(matched, modified int32) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: modified},
	)
}

func findResponse(mt *mtest.T, eventID uuid.UUID, seats ...Seat) bson.D {
	mt.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc, err := toDocument(&SeatMap{
		ID:        uuid.New(),
		EventID:   eventID,
		Layout:    Layout{Objects: seats},
		Width:     800,
		Height:    600,
		Version:   2,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(mt, err)
	raw, err := bson.Marshal(doc)
	require.NoError(mt, err)
	var d bson.D
	require.NoError(mt, bson.Unmarshal(raw, &d))
	return mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, d)
}

func TestMongoRepository_MarkSeatsBooked(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("modified seat is booked", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, 3)
		eventID := uuid.New()
		mt.AddMockResponses(
			countResponse(mt, 1),
			updateResponse(1, 1),
			findResponse(mt, eventID, bookedSeat(mt.T, "A1", "b1"), seat(mt.T, "A2", 100, SeatAvailable)),
		)

		result, err := repo.MarkSeatsBooked(ctx, eventID, []string{"A1"}, "b1")
		require.NoError(mt, err)
		assert.Equal(mt, []string{"A1"}, result.Booked)
		assert.False(mt, result.HasConflict())
	})

	mt.Run("unmodified seat held by another booking", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, 3)
		eventID := uuid.New()
		mt.AddMockResponses(
			countResponse(mt, 1),
			updateResponse(0, 0),
			findResponse(mt, eventID, bookedSeat(mt.T, "A1", "b2")),
		)

		result, err := repo.MarkSeatsBooked(ctx, eventID, []string{"A1"}, "b1")
		require.NoError(mt, err)
		assert.Empty(mt, result.Booked)
		assert.Equal(mt, []string{"A1"}, result.AlreadyBooked)
	})

	mt.Run("partial commit", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, 3)
		eventID := uuid.New()
		mt.AddMockResponses(
			countResponse(mt, 1),
			updateResponse(1, 1),
			updateResponse(0, 0),
			updateResponse(0, 0),
			findResponse(mt, eventID, bookedSeat(mt.T, "A1", "b1"), bookedSeat(mt.T, "A2", "b2")),
		)

		result, err := repo.MarkSeatsBooked(ctx, eventID, []string{"A1", "A2", "Z9"}, "b1")
		require.NoError(mt, err)
		assert.Equal(mt, []string{"A1"}, result.Booked)
		assert.Equal(mt, []string{"A2"}, result.AlreadyBooked)
		assert.Equal(mt, []string{"Z9"}, result.Missing)
	})

	mt.Run("replay by the same booking", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, 3)
		eventID := uuid.New()
		mt.AddMockResponses(
			countResponse(mt, 1),
			updateResponse(0, 0),
			findResponse(mt, eventID, bookedSeat(mt.T, "A1", "b1")),
		)

		result, err := repo.MarkSeatsBooked(ctx, eventID, []string{"A1"}, "b1")
		require.NoError(mt, err)
		assert.Equal(mt, []string{"A1"}, result.Booked)
		assert.False(mt, result.HasConflict())
	})

	mt.Run("absent seat map", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, 3)
		mt.AddMockResponses(countResponse(mt, 0))

		_, err := repo.MarkSeatsBooked(ctx, uuid.New(), []string{"A1"}, "b1")
		assert.True(mt, apperrors.IsNotFound(err), "got %v", err)
	})

	mt.Run("update error", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, 3)
		mt.AddMockResponses(
			countResponse(mt, 1),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad array filter"}),
		)

		_, err := repo.MarkSeatsBooked(ctx, uuid.New(), []string{"A1"}, "b1")
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to commit seat A1")
	})
}

func TestMongoRepository_GetByEvent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes the stored layout", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, 1)
		eventID := uuid.New()
		mt.AddMockResponses(findResponse(mt, eventID, bookedSeat(mt.T, "A1", "b1"), seat(mt.T, "A2", 150, SeatAvailable)))

		sm, err := repo.GetByEvent(context.Background(), eventID)
		require.NoError(mt, err)
		require.NotNil(mt, sm)
		assert.Equal(mt, eventID, sm.EventID)
		assert.Equal(mt, int64(2), sm.Version)
		a2, ok := sm.Layout.Find("A2")
		require.True(mt, ok)
		assert.Equal(mt, "150", a2.Data.Price.String())
	})

	mt.Run("no document", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll, 1)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		sm, err := repo.GetByEvent(context.Background(), uuid.New())
		require.NoError(mt, err)
		assert.Nil(mt, sm)
	})
}
