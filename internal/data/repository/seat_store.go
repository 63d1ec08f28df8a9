package repository

import (
	"context"
	"time"

	"bookmyseat/internal/data/entity"

	"github.com/google/uuid"
)

type RejectReason string

const (
	// RejectUnavailable: the seat exists but is reserved or booked.
	RejectUnavailable RejectReason = "unavailable"
	// RejectUnknown: the screening has no seat with that number.
	RejectUnknown RejectReason = "unknown"
)

type RejectedSeat struct {
	SeatNumber string
	Reason     RejectReason
}

// ReserveOutcome partitions the requested seat numbers. Every distinct
// requested seat appears in exactly one of the two lists, in request order.
type ReserveOutcome struct {
	Granted  []string
	Rejected []RejectedSeat
}

// SeatStore owns seats and bookings. Every per-seat state transition it
// exposes is atomic with respect to concurrent callers on the same seat.
type SeatStore interface {
	CreateSeats(ctx context.Context, screeningID uuid.UUID, seatNumbers []string, now time.Time) ([]*entity.Seat, error)

	// TryReserve moves each available seat to reserved for holder.
	TryReserve(ctx context.Context, screeningID uuid.UUID, seatNumbers []string, holder string, now time.Time) (*ReserveOutcome, error)

	// ReleaseIfStillReservedBy is a no-op unless the seat is reserved by holder.
	ReleaseIfStillReservedBy(ctx context.Context, screeningID uuid.UUID, seatNumber, holder string) (bool, error)

	// ExpireStaleReservations frees every reservation made before cutoff and
	// returns the released seats. Running it twice with the same cutoff
	// leaves the same state as running it once.
	ExpireStaleReservations(ctx context.Context, cutoff time.Time) ([]entity.SeatKey, error)

	// CommitBooking turns a hold into a booking. The seat must be reserved by
	// holder at or after validFrom and have no booking, otherwise the error
	// is marked errs.ErrConflict.
	CommitBooking(ctx context.Context, screeningID uuid.UUID, seatNumber, holder string, validFrom, now time.Time) (*entity.Booking, error)

	FindReservedByHolder(ctx context.Context, screeningID uuid.UUID, holder string) ([]*entity.Seat, error)
	FindByScreening(ctx context.Context, screeningID uuid.UUID) ([]*entity.Seat, error)
}

func dedupe(seatNumbers []string) []string {
	seen := make(map[string]struct{}, len(seatNumbers))
	out := make([]string, 0, len(seatNumbers))
	for _, sn := range seatNumbers {
		if _, ok := seen[sn]; ok {
			continue
		}
		seen[sn] = struct{}{}
		out = append(out, sn)
	}
	return out
}
