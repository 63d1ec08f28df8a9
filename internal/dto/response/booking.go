package response

import (
	"time"
)

type RejectedSeatResponse struct {
	SeatNumber string `json:"seat_number"`
	Reason     string `json:"reason"`
}

type ReservationResponse struct {
	ScreeningID string                 `json:"screening_id"`
	Granted     []string               `json:"granted"`
	Rejected    []RejectedSeatResponse `json:"rejected"`
	ExpiresAt   *time.Time             `json:"expires_at,omitempty"`
}

type HolderReservationsResponse struct {
	ScreeningID string     `json:"screening_id"`
	SeatNumbers []string   `json:"seat_numbers"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type ReleaseResponse struct {
	ScreeningID string   `json:"screening_id"`
	Released    []string `json:"released"`
}

type BookingResponse struct {
	ID          string    `json:"id"`
	ScreeningID string    `json:"screening_id"`
	SeatNumber  string    `json:"seat_number"`
	BookedAt    time.Time `json:"booked_at"`
}

// FinalizeResponse lists the seats that became bookings and the seats whose
// hold was no longer valid. An empty Bookings list is a normal outcome.
// AlreadyBooked seats belong to the holder through another call and are
// neither charged here nor refunded. Unprocessed is only set alongside an
// error.
type FinalizeResponse struct {
	ScreeningID   string            `json:"screening_id"`
	Bookings      []BookingResponse `json:"bookings"`
	Failed        []string          `json:"failed"`
	AlreadyBooked []string          `json:"already_booked"`
	Unprocessed   []string          `json:"unprocessed,omitempty"`
	TotalAmount   int64             `json:"total_amount"`
	Currency      string            `json:"currency"`
}

type PaymentQuoteResponse struct {
	ScreeningID  string     `json:"screening_id"`
	SeatNumbers  []string   `json:"seat_numbers"`
	SeatCount    int        `json:"seat_count"`
	PricePerSeat int64      `json:"price_per_seat"`
	TotalAmount  int64      `json:"total_amount"`
	Currency     string     `json:"currency"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

type BookingHistoryResponse struct {
	ID          string    `json:"id"`
	ScreeningID string    `json:"screening_id"`
	SeatNumber  string    `json:"seat_number"`
	MovieTitle  string    `json:"movie_title"`
	TheaterName string    `json:"theater_name"`
	StartsAt    time.Time `json:"starts_at"`
	BookedAt    time.Time `json:"booked_at"`
}
