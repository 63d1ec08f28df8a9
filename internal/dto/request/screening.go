package request

import "time"

type CreateScreeningRequest struct {
	MovieTitle  string    `json:"movie_title" validate:"required,max=200"`
	TheaterName string    `json:"theater_name" validate:"required,max=200"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	SeatNumbers []string  `json:"seat_numbers" validate:"required,min=1,max=1000,dive,required,max=10"`
}
