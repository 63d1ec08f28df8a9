package repository

import (
	"context"
	"testing"
	"time"

	"bookmyseat/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) *Repository {
		return NewMemoryRepository(clock.NewMockClock(t0), zap.NewNop())
	})
}

func TestMemoryStore_CreateSeatsRejectsDuplicates(t *testing.T) {
	repo := NewMemoryRepository(clock.NewMockClock(t0), zap.NewNop())
	id := seedScreening(t, repo, "A1")

	_, err := repo.Seat.CreateSeats(context.Background(), id, []string{"A2", "A1"}, t0)
	assert.Error(t, err)

	seats, err := repo.Seat.FindByScreening(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, seats, 1)
}

func TestMemoryStore_DeleteScreeningDropsSeats(t *testing.T) {
	repo := NewMemoryRepository(clock.NewMockClock(t0), zap.NewNop())
	ctx := context.Background()
	id := seedScreening(t, repo, "A1", "A2")

	require.NoError(t, repo.Screening.Delete(ctx, id))

	s, err := repo.Screening.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, s)

	seats, err := repo.Seat.FindByScreening(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, seats)
}

func TestMemoryStore_FindByIDMissing(t *testing.T) {
	repo := NewMemoryRepository(clock.NewMockClock(t0), zap.NewNop())

	s, err := repo.Screening.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	repo := NewMemoryRepository(clock.NewMockClock(t0), zap.NewNop())
	id := seedScreening(t, repo, "A1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Seat.TryReserve(ctx, id, []string{"A1"}, "alice", t0)
	assert.Error(t, err)
}

func TestMemoryStore_TransitionsUseInjectedClock(t *testing.T) {
	clk := clock.NewMockClock(t0)
	repo := NewMemoryRepository(clk, zap.NewNop())
	ctx := context.Background()
	id := seedScreening(t, repo, "A1", "A2")

	_, err := repo.Seat.TryReserve(ctx, id, []string{"A1", "A2"}, "alice", t0)
	require.NoError(t, err)

	clk.Set(t0.Add(2 * time.Minute))
	released, err := repo.Seat.ReleaseIfStillReservedBy(ctx, id, "A1", "alice")
	require.NoError(t, err)
	require.True(t, released)
	assert.Equal(t, t0.Add(2*time.Minute), seatStatus(t, repo, id, "A1").UpdatedAt)

	clk.Set(t0.Add(10 * time.Minute))
	_, err = repo.Seat.ExpireStaleReservations(ctx, clk.Now().Add(-testTTL))
	require.NoError(t, err)
	assert.Equal(t, t0.Add(10*time.Minute), seatStatus(t, repo, id, "A2").UpdatedAt)
}
