package notify

import (
	"context"
	"time"
)

// BookingConfirmedEvent is published once per successful finalization.
type BookingConfirmedEvent struct {
	ScreeningID string    `json:"screening_id"`
	HolderID    string    `json:"holder_id"`
	MovieTitle  string    `json:"movie_title"`
	TheaterName string    `json:"theater_name"`
	StartsAt    time.Time `json:"starts_at"`
	BookingIDs  []string  `json:"booking_ids"`
	Seats       []string  `json:"seats"`
	TotalAmount int64     `json:"total_amount"`
	Currency    string    `json:"currency"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Sender delivers booking confirmations. Failures never affect the bookings
// that were already committed.
type Sender interface {
	BookingsConfirmed(ctx context.Context, event BookingConfirmedEvent) error
}
