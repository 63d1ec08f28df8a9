package response

import "time"

type ScreeningResponse struct {
	ID          string    `json:"id"`
	MovieTitle  string    `json:"movie_title"`
	TheaterName string    `json:"theater_name"`
	StartsAt    time.Time `json:"starts_at"`
	SeatCount   int       `json:"seat_count,omitempty"`
}

type SeatResponse struct {
	SeatNumber string `json:"seat_number"`
	Status     string `json:"status"`
}

type SeatMapResponse struct {
	ScreeningID string         `json:"screening_id"`
	Seats       []SeatResponse `json:"seats"`
	Available   int            `json:"available"`
}
