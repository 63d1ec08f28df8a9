package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"bookmyseat/internal/data/entity"
	"bookmyseat/pkg/clock"
	"bookmyseat/pkg/errs"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memorySeat struct {
	mu   sync.Mutex
	seat entity.Seat
}

// memoryDB backs the memory driver. mu guards the maps only; each seat
// transition runs under that seat's own mutex. Lock order is seat.mu then
// db.mu, and db.mu is never held while waiting on a seat.
type memoryDB struct {
	mu         sync.RWMutex
	screenings map[uuid.UUID]*entity.Screening
	seats      map[entity.SeatKey]*memorySeat
	bookings   map[uuid.UUID]*entity.Booking // keyed by seat id
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		screenings: make(map[uuid.UUID]*entity.Screening),
		seats:      make(map[entity.SeatKey]*memorySeat),
		bookings:   make(map[uuid.UUID]*entity.Booking),
	}
}

func (db *memoryDB) lookup(key entity.SeatKey) *memorySeat {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.seats[key]
}

func (db *memoryDB) seatsWhere(match func(entity.SeatKey) bool) []*memorySeat {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]*memorySeat, 0)
	for key, ms := range db.seats {
		if match(key) {
			out = append(out, ms)
		}
	}
	return out
}

func makeAvailable(seat *entity.Seat, now time.Time) {
	seat.Status = entity.SeatStatusAvailable
	seat.ReservedBy = nil
	seat.ReservedAt = nil
	seat.UpdatedAt = now
}

func cloneSeat(seat *entity.Seat) *entity.Seat {
	out := *seat
	if seat.ReservedBy != nil {
		h := *seat.ReservedBy
		out.ReservedBy = &h
	}
	if seat.ReservedAt != nil {
		at := *seat.ReservedAt
		out.ReservedAt = &at
	}
	return &out
}

// ==================== SEAT STORE ====================

type memorySeatStore struct {
	db    *memoryDB
	clock clock.Clock
	log   *zap.Logger
}

func (s *memorySeatStore) CreateSeats(ctx context.Context, screeningID uuid.UUID, seatNumbers []string, now time.Time) ([]*entity.Seat, error) {
	seatNumbers = dedupe(seatNumbers)

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, sn := range seatNumbers {
		if _, ok := s.db.seats[entity.SeatKey{ScreeningID: screeningID, SeatNumber: sn}]; ok {
			return nil, errs.Mark(errs.Newf("duplicate seat number %s", sn), errs.ErrInvalidRequest)
		}
	}

	seats := make([]*entity.Seat, 0, len(seatNumbers))
	for _, sn := range seatNumbers {
		ms := &memorySeat{seat: entity.Seat{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			ScreeningID: screeningID,
			SeatNumber:  sn,
			Status:      entity.SeatStatusAvailable,
		}}
		s.db.seats[ms.seat.Key()] = ms
		seats = append(seats, cloneSeat(&ms.seat))
	}

	return seats, nil
}

func (s *memorySeatStore) TryReserve(ctx context.Context, screeningID uuid.UUID, seatNumbers []string, holder string, now time.Time) (*ReserveOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Storage(err, "reserve seats")
	}

	outcome := &ReserveOutcome{Granted: []string{}, Rejected: []RejectedSeat{}}

	for _, sn := range dedupe(seatNumbers) {
		ms := s.db.lookup(entity.SeatKey{ScreeningID: screeningID, SeatNumber: sn})
		if ms == nil {
			outcome.Rejected = append(outcome.Rejected, RejectedSeat{SeatNumber: sn, Reason: RejectUnknown})
			continue
		}

		ms.mu.Lock()
		if ms.seat.Status == entity.SeatStatusAvailable {
			h, at := holder, now
			ms.seat.Status = entity.SeatStatusReserved
			ms.seat.ReservedBy = &h
			ms.seat.ReservedAt = &at
			ms.seat.UpdatedAt = now
			outcome.Granted = append(outcome.Granted, sn)
		} else {
			outcome.Rejected = append(outcome.Rejected, RejectedSeat{SeatNumber: sn, Reason: RejectUnavailable})
		}
		ms.mu.Unlock()
	}

	return outcome, nil
}

func (s *memorySeatStore) ReleaseIfStillReservedBy(ctx context.Context, screeningID uuid.UUID, seatNumber, holder string) (bool, error) {
	ms := s.db.lookup(entity.SeatKey{ScreeningID: screeningID, SeatNumber: seatNumber})
	if ms == nil {
		return false, nil
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if !ms.seat.IsReservedBy(holder) {
		return false, nil
	}
	makeAvailable(&ms.seat, s.clock.Now())
	return true, nil
}

func (s *memorySeatStore) ExpireStaleReservations(ctx context.Context, cutoff time.Time) ([]entity.SeatKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Storage(err, "expire reservations")
	}

	released := []entity.SeatKey{}
	for _, ms := range s.db.seatsWhere(func(entity.SeatKey) bool { return true }) {
		ms.mu.Lock()
		if ms.seat.Status == entity.SeatStatusReserved && ms.seat.ReservedAt.Before(cutoff) {
			makeAvailable(&ms.seat, s.clock.Now())
			released = append(released, ms.seat.Key())
		}
		ms.mu.Unlock()
	}

	return released, nil
}

func (s *memorySeatStore) CommitBooking(ctx context.Context, screeningID uuid.UUID, seatNumber, holder string, validFrom, now time.Time) (*entity.Booking, error) {
	ms := s.db.lookup(entity.SeatKey{ScreeningID: screeningID, SeatNumber: seatNumber})
	if ms == nil {
		return nil, errs.Wrapf(errs.ErrConflict, "seat %s", seatNumber)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if !ms.seat.IsReservedBy(holder) || ms.seat.ReservedAt.Before(validFrom) {
		return nil, errs.Wrapf(errs.ErrConflict, "seat %s", seatNumber)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.bookings[ms.seat.ID]; ok {
		return nil, errs.Wrapf(errs.ErrConflict, "seat %s already has a booking", seatNumber)
	}

	booking := &entity.Booking{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		ScreeningID: screeningID,
		SeatID:      ms.seat.ID,
		SeatNumber:  seatNumber,
		HolderID:    holder,
	}
	s.db.bookings[ms.seat.ID] = booking

	ms.seat.Status = entity.SeatStatusBooked
	ms.seat.ReservedBy = nil
	ms.seat.ReservedAt = nil
	ms.seat.UpdatedAt = now

	out := *booking
	return &out, nil
}

func (s *memorySeatStore) FindReservedByHolder(ctx context.Context, screeningID uuid.UUID, holder string) ([]*entity.Seat, error) {
	return s.collect(screeningID, func(seat *entity.Seat) bool {
		return seat.IsReservedBy(holder)
	}), nil
}

func (s *memorySeatStore) FindByScreening(ctx context.Context, screeningID uuid.UUID) ([]*entity.Seat, error) {
	return s.collect(screeningID, func(*entity.Seat) bool { return true }), nil
}

func (s *memorySeatStore) collect(screeningID uuid.UUID, keep func(*entity.Seat) bool) []*entity.Seat {
	candidates := s.db.seatsWhere(func(key entity.SeatKey) bool {
		return key.ScreeningID == screeningID
	})

	seats := make([]*entity.Seat, 0, len(candidates))
	for _, ms := range candidates {
		ms.mu.Lock()
		seat := cloneSeat(&ms.seat)
		ms.mu.Unlock()
		if keep(seat) {
			seats = append(seats, seat)
		}
	}

	slices.SortFunc(seats, func(a, b *entity.Seat) int {
		return strings.Compare(a.SeatNumber, b.SeatNumber)
	})
	return seats
}

// ==================== SCREENINGS ====================

type memoryScreeningRepository struct {
	db  *memoryDB
	log *zap.Logger
}

func (r *memoryScreeningRepository) Create(ctx context.Context, screening *entity.Screening) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.screenings[screening.ID]; ok {
		return errs.Mark(errs.Newf("screening %s already exists", screening.ID), errs.ErrInvalidRequest)
	}
	s := *screening
	r.db.screenings[s.ID] = &s
	return nil
}

func (r *memoryScreeningRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Screening, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	s, ok := r.db.screenings[id]
	if !ok {
		return nil, nil
	}
	out := *s
	return &out, nil
}

func (r *memoryScreeningRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.screenings, id)
	for key := range r.db.seats {
		if key.ScreeningID == id {
			delete(r.db.seats, key)
		}
	}
	return nil
}

// ==================== BOOKINGS ====================

type memoryBookingRepository struct {
	db  *memoryDB
	log *zap.Logger
}

func (r *memoryBookingRepository) FindByHolder(ctx context.Context, holder string) ([]*entity.BookingDetail, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	details := []*entity.BookingDetail{}
	for _, b := range r.db.bookings {
		if b.HolderID != holder {
			continue
		}
		d := &entity.BookingDetail{Booking: *b}
		if s, ok := r.db.screenings[b.ScreeningID]; ok {
			d.MovieTitle = s.MovieTitle
			d.TheaterName = s.TheaterName
			d.StartsAt = s.StartsAt
		}
		details = append(details, d)
	}

	slices.SortFunc(details, func(a, b *entity.BookingDetail) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.SeatNumber, b.SeatNumber)
	})
	return details, nil
}

func (r *memoryBookingRepository) CountAll(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.bookings)), nil
}

func (r *memoryBookingRepository) TopMovies(ctx context.Context, limit int) ([]entity.RankedCount, error) {
	return r.rank(limit, func(s *entity.Screening) string { return s.MovieTitle }), nil
}

func (r *memoryBookingRepository) TopTheaters(ctx context.Context, limit int) ([]entity.RankedCount, error) {
	return r.rank(limit, func(s *entity.Screening) string { return s.TheaterName }), nil
}

func (r *memoryBookingRepository) rank(limit int, name func(*entity.Screening) string) []entity.RankedCount {
	r.db.mu.RLock()
	counts := make(map[string]int64)
	for _, b := range r.db.bookings {
		if s, ok := r.db.screenings[b.ScreeningID]; ok {
			counts[name(s)]++
		}
	}
	r.db.mu.RUnlock()

	ranked := make([]entity.RankedCount, 0, len(counts))
	for n, c := range counts {
		ranked = append(ranked, entity.RankedCount{Name: n, Count: c})
	}
	slices.SortFunc(ranked, func(a, b entity.RankedCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
