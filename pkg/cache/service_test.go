package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	EventID string `json:"event_id"`
	Seats   int    `json:"seats"`
}

func TestService_GetHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	mock.ExpectGet("seatmap:e1").SetVal(`{"event_id":"e1","seats":40}`)

	var got snapshot
	require.NoError(t, svc.Get(context.Background(), "seatmap:e1", &got))
	assert.Equal(t, snapshot{EventID: "e1", Seats: 40}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	mock.ExpectGet("seatmap:e2").RedisNil()

	var got snapshot
	err := svc.Get(context.Background(), "seatmap:e2", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	mock.ExpectGet("seatmap:e3").SetErr(errors.New("connection refused"))

	var got snapshot
	err := svc.Get(context.Background(), "seatmap:e3", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestService_SetAndDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	mock.ExpectSet("seatmap:e1", []byte(`{"event_id":"e1","seats":2}`), 30*time.Second).SetVal("OK")
	mock.ExpectDel("seatmap:e1").SetVal(1)

	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, "seatmap:e1", snapshot{EventID: "e1", Seats: 2}, 30*time.Second))
	require.NoError(t, svc.Delete(ctx, "seatmap:e1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_NilClientAlwaysMisses(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "k", snapshot{}, time.Second))
	var got snapshot
	assert.ErrorIs(t, svc.Get(ctx, "k", &got), ErrCacheMiss)
	assert.NoError(t, svc.Delete(ctx, "k"))
	assert.NoError(t, svc.Ping(ctx))
}
