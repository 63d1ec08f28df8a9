package cache

import (
	"context"

	"bookmyseat/internal/data/entity"

	"github.com/google/uuid"
)

// SeatState is the public view of one seat. Holder identity is never cached.
type SeatState struct {
	SeatNumber string            `json:"seat_number"`
	Status     entity.SeatStatus `json:"status"`
}

// SeatMapCache caches the seat map of a screening. A miss returns ok=false.
// Callers treat every error as a miss; the store stays the source of truth.
//
// Every Invalidate bumps the screening's generation. Set only stores the
// map when the generation still equals the one read before loading it, so a
// map loaded before a concurrent mutation is dropped.
type SeatMapCache interface {
	Get(ctx context.Context, screeningID uuid.UUID) (seats []SeatState, ok bool, err error)
	Generation(ctx context.Context, screeningID uuid.UUID) (int64, error)
	Set(ctx context.Context, screeningID uuid.UUID, generation int64, seats []SeatState) error
	Invalidate(ctx context.Context, screeningIDs ...uuid.UUID) error
}

type noop struct{}

// NewNoop is used when Redis is not configured.
func NewNoop() SeatMapCache { return noop{} }

func (noop) Get(context.Context, uuid.UUID) ([]SeatState, bool, error) { return nil, false, nil }
func (noop) Generation(context.Context, uuid.UUID) (int64, error)      { return 0, nil }
func (noop) Set(context.Context, uuid.UUID, int64, []SeatState) error  { return nil }
func (noop) Invalidate(context.Context, ...uuid.UUID) error            { return nil }
