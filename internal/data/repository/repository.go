package repository

import (
	"bookmyseat/pkg/clock"
	"bookmyseat/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Seat      SeatStore
	Screening ScreeningRepository
	Booking   BookingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Seat:      NewSeatRepository(db, log),
		Screening: NewScreeningRepository(db, log),
		Booking:   NewBookingRepository(db, log),
	}
}

// NewMemoryRepository keeps all state in process. Used by tests and the
// "memory" store driver. clk stamps transitions that carry no caller time.
func NewMemoryRepository(clk clock.Clock, log *zap.Logger) *Repository {
	db := newMemoryDB()
	return &Repository{
		Seat:      &memorySeatStore{db: db, clock: clk, log: log.With(zap.String("repository", "seat_memory"))},
		Screening: &memoryScreeningRepository{db: db, log: log.With(zap.String("repository", "screening_memory"))},
		Booking:   &memoryBookingRepository{db: db, log: log.With(zap.String("repository", "booking_memory"))},
	}
}
