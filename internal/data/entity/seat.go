package entity

import (
	"time"

	"github.com/google/uuid"
)

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusReserved  SeatStatus = "reserved"
	SeatStatusBooked    SeatStatus = "booked"
)

// Seat belongs to exactly one screening. ReservedBy and ReservedAt are set
// iff Status is reserved.
type Seat struct {
	Base
	ScreeningID uuid.UUID  `db:"screening_id"`
	SeatNumber  string     `db:"seat_number"` // A1, A2, B1, etc.
	Status      SeatStatus `db:"status"`
	ReservedBy  *string    `db:"reserved_by"`
	ReservedAt  *time.Time `db:"reserved_at"`
}

func (s *Seat) Key() SeatKey {
	return SeatKey{ScreeningID: s.ScreeningID, SeatNumber: s.SeatNumber}
}

func (s *Seat) IsReservedBy(holder string) bool {
	return s.Status == SeatStatusReserved && s.ReservedBy != nil && *s.ReservedBy == holder
}

// ReservedUntil returns the end of the hold lease, or the zero time when the
// seat is not reserved.
func (s *Seat) ReservedUntil(ttl time.Duration) time.Time {
	if s.Status != SeatStatusReserved || s.ReservedAt == nil {
		return time.Time{}
	}
	return s.ReservedAt.Add(ttl)
}

type SeatKey struct {
	ScreeningID uuid.UUID
	SeatNumber  string
}
