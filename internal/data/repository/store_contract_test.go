package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bookmyseat/internal/data/entity"
	"bookmyseat/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = 5 * time.Minute

var t0 = time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

func seedScreening(t *testing.T, repo *Repository, seatNumbers ...string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	screening := &entity.Screening{
		BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: t0},
		MovieTitle:  "Dune",
		TheaterName: "PVR Forum",
		StartsAt:    t0.Add(3 * time.Hour),
	}
	require.NoError(t, repo.Screening.Create(ctx, screening))

	_, err := repo.Seat.CreateSeats(ctx, screening.ID, seatNumbers, t0)
	require.NoError(t, err)
	return screening.ID
}

func seatStatus(t *testing.T, repo *Repository, screeningID uuid.UUID, seatNumber string) *entity.Seat {
	t.Helper()
	seats, err := repo.Seat.FindByScreening(context.Background(), screeningID)
	require.NoError(t, err)
	for _, s := range seats {
		if s.SeatNumber == seatNumber {
			return s
		}
	}
	t.Fatalf("seat %s not found", seatNumber)
	return nil
}

// runStoreContract exercises the behaviour every SeatStore driver must share.
func runStoreContract(t *testing.T, newRepo func(t *testing.T) *Repository) {
	t.Run("reserve partitions granted and rejected", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := seedScreening(t, repo, "A1", "A2", "A3")

		out, err := repo.Seat.TryReserve(ctx, id, []string{"A1", "A2"}, "alice", t0)
		require.NoError(t, err)
		assert.Equal(t, []string{"A1", "A2"}, out.Granted)
		assert.Empty(t, out.Rejected)

		out, err = repo.Seat.TryReserve(ctx, id, []string{"A1", "A3", "Z9", "A3"}, "bob", t0.Add(time.Second))
		require.NoError(t, err)
		assert.Equal(t, []string{"A3"}, out.Granted)
		assert.Equal(t, []RejectedSeat{
			{SeatNumber: "A1", Reason: RejectUnavailable},
			{SeatNumber: "Z9", Reason: RejectUnknown},
		}, out.Rejected)

		a1 := seatStatus(t, repo, id, "A1")
		assert.Equal(t, entity.SeatStatusReserved, a1.Status)
		require.NotNil(t, a1.ReservedBy)
		assert.Equal(t, "alice", *a1.ReservedBy)
	})

	t.Run("release only by the current holder", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := seedScreening(t, repo, "B1")

		_, err := repo.Seat.TryReserve(ctx, id, []string{"B1"}, "alice", t0)
		require.NoError(t, err)

		released, err := repo.Seat.ReleaseIfStillReservedBy(ctx, id, "B1", "bob")
		require.NoError(t, err)
		assert.False(t, released)
		assert.Equal(t, entity.SeatStatusReserved, seatStatus(t, repo, id, "B1").Status)

		released, err = repo.Seat.ReleaseIfStillReservedBy(ctx, id, "B1", "alice")
		require.NoError(t, err)
		assert.True(t, released)

		seat := seatStatus(t, repo, id, "B1")
		assert.Equal(t, entity.SeatStatusAvailable, seat.Status)
		assert.Nil(t, seat.ReservedBy)
		assert.Nil(t, seat.ReservedAt)
	})

	t.Run("expire is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := seedScreening(t, repo, "C1", "C2")

		_, err := repo.Seat.TryReserve(ctx, id, []string{"C1"}, "alice", t0)
		require.NoError(t, err)
		_, err = repo.Seat.TryReserve(ctx, id, []string{"C2"}, "bob", t0.Add(4*time.Minute))
		require.NoError(t, err)

		cutoff := t0.Add(6 * time.Minute).Add(-testTTL)

		first, err := repo.Seat.ExpireStaleReservations(ctx, cutoff)
		require.NoError(t, err)
		assert.Contains(t, first, entity.SeatKey{ScreeningID: id, SeatNumber: "C1"})
		assert.NotContains(t, first, entity.SeatKey{ScreeningID: id, SeatNumber: "C2"})

		afterFirst, err := repo.Seat.FindByScreening(ctx, id)
		require.NoError(t, err)

		second, err := repo.Seat.ExpireStaleReservations(ctx, cutoff)
		require.NoError(t, err)
		assert.NotContains(t, second, entity.SeatKey{ScreeningID: id, SeatNumber: "C1"})

		afterSecond, err := repo.Seat.FindByScreening(ctx, id)
		require.NoError(t, err)
		require.Len(t, afterSecond, len(afterFirst))
		for i := range afterFirst {
			assert.Equal(t, afterFirst[i].Status, afterSecond[i].Status)
			assert.Equal(t, afterFirst[i].ReservedBy, afterSecond[i].ReservedBy)
		}
	})

	t.Run("commit honours the ttl boundary", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := seedScreening(t, repo, "D1", "D2")

		_, err := repo.Seat.TryReserve(ctx, id, []string{"D1", "D2"}, "alice", t0)
		require.NoError(t, err)

		eps := time.Millisecond

		justBefore := t0.Add(testTTL - eps)
		booking, err := repo.Seat.CommitBooking(ctx, id, "D1", "alice", justBefore.Add(-testTTL), justBefore)
		require.NoError(t, err)
		assert.Equal(t, "D1", booking.SeatNumber)
		assert.Equal(t, "alice", booking.HolderID)

		justAfter := t0.Add(testTTL + eps)
		_, err = repo.Seat.CommitBooking(ctx, id, "D2", "alice", justAfter.Add(-testTTL), justAfter)
		assert.True(t, errs.Is(err, errs.ErrConflict))
		assert.Equal(t, entity.SeatStatusReserved, seatStatus(t, repo, id, "D2").Status)
	})

	t.Run("commit rejects foreign and booked seats", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := seedScreening(t, repo, "E1")

		_, err := repo.Seat.TryReserve(ctx, id, []string{"E1"}, "alice", t0)
		require.NoError(t, err)

		_, err = repo.Seat.CommitBooking(ctx, id, "E1", "bob", t0.Add(-testTTL), t0)
		assert.True(t, errs.Is(err, errs.ErrConflict))

		_, err = repo.Seat.CommitBooking(ctx, id, "E1", "alice", t0.Add(-testTTL), t0)
		require.NoError(t, err)

		_, err = repo.Seat.CommitBooking(ctx, id, "E1", "alice", t0.Add(-testTTL), t0)
		assert.True(t, errs.Is(err, errs.ErrConflict))

		seat := seatStatus(t, repo, id, "E1")
		assert.Equal(t, entity.SeatStatusBooked, seat.Status)
		assert.Nil(t, seat.ReservedBy)

		// booked is terminal
		released, err := repo.Seat.ReleaseIfStillReservedBy(ctx, id, "E1", "alice")
		require.NoError(t, err)
		assert.False(t, released)

		expired, err := repo.Seat.ExpireStaleReservations(ctx, t0.Add(time.Hour))
		require.NoError(t, err)
		assert.NotContains(t, expired, entity.SeatKey{ScreeningID: id, SeatNumber: "E1"})

		out, err := repo.Seat.TryReserve(ctx, id, []string{"E1"}, "carol", t0.Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, out.Granted)
	})

	t.Run("concurrent reservers get exactly one grant", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := seedScreening(t, repo, "F1")

		const racers = 32
		var grants atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})

		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(holder string) {
				defer wg.Done()
				<-start
				out, err := repo.Seat.TryReserve(ctx, id, []string{"F1"}, holder, t0)
				if !assert.NoError(t, err) {
					return
				}
				if len(out.Granted) == 1 {
					grants.Add(1)
				} else {
					assert.Equal(t, []RejectedSeat{{SeatNumber: "F1", Reason: RejectUnavailable}}, out.Rejected)
				}
			}(uuid.NewString())
		}

		close(start)
		wg.Wait()
		assert.Equal(t, int32(1), grants.Load())
	})

	t.Run("concurrent commit and expiry never both win", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := seedScreening(t, repo, "G1")

		_, err := repo.Seat.TryReserve(ctx, id, []string{"G1"}, "alice", t0)
		require.NoError(t, err)

		// Both the commit window and the expiry cutoff admit this hold.
		now := t0.Add(testTTL + time.Second)
		var wg sync.WaitGroup
		var committed atomic.Bool
		var expired atomic.Bool

		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := repo.Seat.CommitBooking(ctx, id, "G1", "alice", t0, now); err == nil {
				committed.Store(true)
			}
		}()
		go func() {
			defer wg.Done()
			keys, err := repo.Seat.ExpireStaleReservations(ctx, t0.Add(time.Nanosecond))
			if err == nil && len(keys) > 0 {
				expired.Store(true)
			}
		}()
		wg.Wait()

		assert.True(t, committed.Load() != expired.Load())

		seat := seatStatus(t, repo, id, "G1")
		if committed.Load() {
			assert.Equal(t, entity.SeatStatusBooked, seat.Status)
		} else {
			assert.Equal(t, entity.SeatStatusAvailable, seat.Status)
		}
	})

	t.Run("holder views and reporting", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := seedScreening(t, repo, "H1", "H2", "H3")

		_, err := repo.Seat.TryReserve(ctx, id, []string{"H1", "H2"}, "alice", t0)
		require.NoError(t, err)
		_, err = repo.Seat.TryReserve(ctx, id, []string{"H3"}, "bob", t0)
		require.NoError(t, err)

		held, err := repo.Seat.FindReservedByHolder(ctx, id, "alice")
		require.NoError(t, err)
		require.Len(t, held, 2)
		assert.Equal(t, "H1", held[0].SeatNumber)
		assert.Equal(t, "H2", held[1].SeatNumber)

		for _, sn := range []string{"H1", "H2"} {
			_, err := repo.Seat.CommitBooking(ctx, id, sn, "alice", t0, t0.Add(time.Minute))
			require.NoError(t, err)
		}

		history, err := repo.Booking.FindByHolder(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "Dune", history[0].MovieTitle)
		assert.Equal(t, "PVR Forum", history[0].TheaterName)

		count, err := repo.Booking.CountAll(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, count, int64(2))

		movies, err := repo.Booking.TopMovies(ctx, 5)
		require.NoError(t, err)
		require.NotEmpty(t, movies)
		assert.LessOrEqual(t, len(movies), 5)

		theaters, err := repo.Booking.TopTheaters(ctx, 5)
		require.NoError(t, err)
		require.NotEmpty(t, theaters)
	})
}
