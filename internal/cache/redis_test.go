package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookmyseat/internal/data/entity"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisSeatMapCache_SetThenGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db, 10*time.Second, zap.NewNop())

	ctx := context.Background()
	id := uuid.New()
	seats := []SeatState{
		{SeatNumber: "A1", Status: entity.SeatStatusAvailable},
		{SeatNumber: "A2", Status: entity.SeatStatusBooked},
	}
	body := `[{"seat_number":"A1","status":"available"},{"seat_number":"A2","status":"booked"}]`

	mock.ExpectEvalSha(setIfGeneration.Hash(), []string{Key(id), GenerationKey(id)}, int64(3), body, int64(10000)).SetVal(int64(1))
	mock.ExpectGet(Key(id)).SetVal(body)

	require.NoError(t, c.Set(ctx, id, 3, seats))

	got, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, seats, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSeatMapCache_SetSkippedAfterInvalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db, time.Second, zap.NewNop())
	id := uuid.New()

	mock.ExpectEvalSha(setIfGeneration.Hash(), []string{Key(id), GenerationKey(id)}, int64(0), "[]", int64(1000)).SetVal(int64(0))

	require.NoError(t, c.Set(context.Background(), id, 0, []SeatState{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSeatMapCache_SetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db, time.Second, zap.NewNop())
	id := uuid.New()

	mock.ExpectEvalSha(setIfGeneration.Hash(), []string{Key(id), GenerationKey(id)}, int64(0), "[]", int64(1000)).SetErr(errors.New("connection refused"))

	assert.Error(t, c.Set(context.Background(), id, 0, []SeatState{}))
}

func TestRedisSeatMapCache_Generation(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db, time.Second, zap.NewNop())
	ctx := context.Background()
	fresh, bumped := uuid.New(), uuid.New()

	mock.ExpectGet(GenerationKey(fresh)).RedisNil()
	mock.ExpectGet(GenerationKey(bumped)).SetVal("4")

	gen, err := c.Generation(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	gen, err = c.Generation(ctx, bumped)
	require.NoError(t, err)
	assert.Equal(t, int64(4), gen)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSeatMapCache_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db, time.Second, zap.NewNop())
	id := uuid.New()

	mock.ExpectGet(Key(id)).RedisNil()

	got, ok, err := c.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRedisSeatMapCache_CorruptEntryIsMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db, time.Second, zap.NewNop())
	id := uuid.New()

	mock.ExpectGet(Key(id)).SetVal("{not json")

	_, ok, err := c.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSeatMapCache_GetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db, time.Second, zap.NewNop())
	id := uuid.New()

	mock.ExpectGet(Key(id)).SetErr(errors.New("connection refused"))

	_, ok, err := c.Get(context.Background(), id)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisSeatMapCache_InvalidateDedupes(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db, time.Second, zap.NewNop())
	a, b := uuid.New(), uuid.New()

	mock.ExpectTxPipeline()
	mock.ExpectIncr(GenerationKey(a)).SetVal(1)
	mock.ExpectExpire(GenerationKey(a), generationTTL).SetVal(true)
	mock.ExpectIncr(GenerationKey(b)).SetVal(1)
	mock.ExpectExpire(GenerationKey(b), generationTTL).SetVal(true)
	mock.ExpectDel(Key(a), Key(b)).SetVal(2)
	mock.ExpectTxPipelineExec()

	require.NoError(t, c.Invalidate(context.Background(), a, b, a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSeatMapCache_InvalidateNothing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db, time.Second, zap.NewNop())

	require.NoError(t, c.Invalidate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoop(t *testing.T) {
	c := NewNoop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, uuid.New(), 0, nil))
	gen, err := c.Generation(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, gen)
	_, ok, err := c.Get(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx, uuid.New()))
}
