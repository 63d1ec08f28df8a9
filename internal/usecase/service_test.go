package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookmyseat/internal/cache"
	"bookmyseat/internal/data/entity"
	"bookmyseat/internal/data/repository"
	"bookmyseat/internal/dto/request"
	"bookmyseat/internal/notify"
	"bookmyseat/pkg/clock"
	"bookmyseat/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

var testBooking = utils.BookingConfig{
	ReservationTTL: 5 * time.Minute,
	PricePerSeat:   25000,
	Currency:       "INR",
	SweepInterval:  time.Minute,
	NotifyTimeout:  time.Second,
}

type recordingSender struct {
	mu     sync.Mutex
	events []notify.BookingConfirmedEvent
	err    error
}

func (s *recordingSender) BookingsConfirmed(ctx context.Context, event notify.BookingConfirmedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingSender) Events() []notify.BookingConfirmedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.BookingConfirmedEvent(nil), s.events...)
}

// mapCache is an in-process SeatMapCache that records invalidations.
type mapCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID][]cache.SeatState
	generations map[uuid.UUID]int64
	invalidated []uuid.UUID
	gets        int
}

func newMapCache() *mapCache {
	return &mapCache{
		entries:     make(map[uuid.UUID][]cache.SeatState),
		generations: make(map[uuid.UUID]int64),
	}
}

func (c *mapCache) Get(ctx context.Context, id uuid.UUID) ([]cache.SeatState, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	seats, ok := c.entries[id]
	return seats, ok, nil
}

func (c *mapCache) Generation(ctx context.Context, id uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[id], nil
}

func (c *mapCache) Set(ctx context.Context, id uuid.UUID, gen int64, seats []cache.SeatState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[id] != gen {
		return nil
	}
	c.entries[id] = seats
	return nil
}

func (c *mapCache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.entries, id)
		c.generations[id]++
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

func (c *mapCache) Cached(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

type fixture struct {
	svc    *Service
	repo   *repository.Repository
	clock  *clock.MockClock
	sender *recordingSender
	cache  *mapCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewMockClock(t0)
	f := &fixture{
		repo:   repository.NewMemoryRepository(clk, zap.NewNop()),
		clock:  clk,
		sender: &recordingSender{},
		cache:  newMapCache(),
	}
	f.svc = NewService(f.repo, f.cache, f.sender, f.clock, testConfig(), zap.NewNop())
	return f
}

func (f *fixture) screening(t *testing.T, seatNumbers ...string) string {
	t.Helper()

	resp, err := f.svc.Catalog.RegisterScreening(context.Background(), &request.CreateScreeningRequest{
		MovieTitle:  "Dune",
		TheaterName: "PVR Forum",
		StartsAt:    t0.Add(3 * time.Hour),
		SeatNumbers: seatNumbers,
	})
	require.NoError(t, err)
	return resp.ID
}

func (f *fixture) reserve(t *testing.T, screeningID, holder string, seatNumbers ...string) []string {
	t.Helper()

	resp, err := f.svc.Reservation.ReserveSeats(context.Background(), screeningID, holder, &request.ReserveSeatsRequest{
		SeatNumbers: seatNumbers,
	})
	require.NoError(t, err)
	return resp.Granted
}

func (f *fixture) seat(t *testing.T, screeningID, seatNumber string) *entity.Seat {
	t.Helper()

	seats, err := f.repo.Seat.FindByScreening(context.Background(), uuid.MustParse(screeningID))
	require.NoError(t, err)
	for _, s := range seats {
		if s.SeatNumber == seatNumber {
			return s
		}
	}
	t.Fatalf("seat %s not found", seatNumber)
	return nil
}

// rebuild re-creates the services after the fixture's repository was swapped.
func (f *fixture) rebuild() {
	f.svc = NewService(f.repo, f.cache, f.sender, f.clock, testConfig(), zap.NewNop())
}

// failingSeats fails the selected store operations with err.
type failingSeats struct {
	repository.SeatStore
	err          error
	failExpire   bool
	failReserve  bool
	failCommitOn string
}

func (s *failingSeats) ExpireStaleReservations(ctx context.Context, cutoff time.Time) ([]entity.SeatKey, error) {
	if s.failExpire {
		return nil, s.err
	}
	return s.SeatStore.ExpireStaleReservations(ctx, cutoff)
}

func (s *failingSeats) TryReserve(ctx context.Context, screeningID uuid.UUID, seatNumbers []string, holder string, now time.Time) (*repository.ReserveOutcome, error) {
	if s.failReserve {
		return nil, s.err
	}
	return s.SeatStore.TryReserve(ctx, screeningID, seatNumbers, holder, now)
}

func (s *failingSeats) CommitBooking(ctx context.Context, screeningID uuid.UUID, seatNumber, holder string, validFrom, now time.Time) (*entity.Booking, error) {
	if seatNumber == s.failCommitOn {
		return nil, s.err
	}
	return s.SeatStore.CommitBooking(ctx, screeningID, seatNumber, holder, validFrom, now)
}

func testConfig() *utils.Config {
	return &utils.Config{Booking: testBooking}
}

// racingSeats lets a parallel finalize of the same holder commit winsOn
// just before this call tries it.
type racingSeats struct {
	repository.SeatStore
	winsOn string
}

func (s *racingSeats) CommitBooking(ctx context.Context, screeningID uuid.UUID, seatNumber, holder string, validFrom, now time.Time) (*entity.Booking, error) {
	if seatNumber == s.winsOn {
		if _, err := s.SeatStore.CommitBooking(ctx, screeningID, seatNumber, holder, validFrom, now); err != nil {
			return nil, err
		}
	}
	return s.SeatStore.CommitBooking(ctx, screeningID, seatNumber, holder, validFrom, now)
}

// interleavedLoad runs afterLoad once, between reading a screening's seats
// and returning them.
type interleavedLoad struct {
	repository.SeatStore
	afterLoad func()
}

func (s *interleavedLoad) FindByScreening(ctx context.Context, screeningID uuid.UUID) ([]*entity.Seat, error) {
	seats, err := s.SeatStore.FindByScreening(ctx, screeningID)
	if hook := s.afterLoad; hook != nil {
		s.afterLoad = nil
		hook()
	}
	return seats, err
}
