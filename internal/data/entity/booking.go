package entity

import (
	"time"

	"github.com/google/uuid"
)

// Booking is the permanent record of one seat sold to one holder. A seat
// maps to at most one booking.
type Booking struct {
	BaseSimple
	ScreeningID uuid.UUID `db:"screening_id"`
	SeatID      uuid.UUID `db:"seat_id"`
	SeatNumber  string    `db:"seat_number"`
	HolderID    string    `db:"holder_id"`
}

// BookingDetail joins a booking with its screening for history views.
type BookingDetail struct {
	Booking
	MovieTitle  string    `db:"movie_title"`
	TheaterName string    `db:"theater_name"`
	StartsAt    time.Time `db:"starts_at"`
}
