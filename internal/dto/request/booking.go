package request

type ReserveSeatsRequest struct {
	SeatNumbers []string `json:"seat_numbers" validate:"required,min=1,max=20,dive,required,max=10"`
	// AllOrNothing releases every granted seat when any requested seat is
	// rejected. Off by default: whatever is free gets reserved.
	AllOrNothing bool `json:"all_or_nothing"`
}

// ReleaseSeatsRequest with no seat numbers releases all of the holder's
// seats in the screening.
type ReleaseSeatsRequest struct {
	SeatNumbers []string `json:"seat_numbers" validate:"omitempty,max=20,dive,required,max=10"`
}
