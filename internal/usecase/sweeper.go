package usecase

import (
	"context"
	"time"

	"bookmyseat/internal/cache"
	"bookmyseat/internal/data/repository"
	"bookmyseat/pkg/clock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpirySweeper reclaims holds older than the reservation TTL. It is called
// on every reservation and booking path and periodically by Run.
type ExpirySweeper interface {
	Sweep(ctx context.Context) (int, error)
	Run(ctx context.Context, interval time.Duration)
}

type expirySweeper struct {
	seats     repository.SeatStore
	seatCache cache.SeatMapCache
	clock     clock.Clock
	ttl       time.Duration
	log       *zap.Logger
}

func NewExpirySweeper(seats repository.SeatStore, seatCache cache.SeatMapCache, clk clock.Clock, ttl time.Duration, log *zap.Logger) ExpirySweeper {
	return &expirySweeper{
		seats:     seats,
		seatCache: seatCache,
		clock:     clk,
		ttl:       ttl,
		log:       log.With(zap.String("service", "sweeper")),
	}
}

func (s *expirySweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().Add(-s.ttl)

	released, err := s.seats.ExpireStaleReservations(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(released) == 0 {
		return 0, nil
	}

	screenings := make([]uuid.UUID, 0, len(released))
	for _, key := range released {
		screenings = append(screenings, key.ScreeningID)
	}
	if err := s.seatCache.Invalidate(ctx, screenings...); err != nil {
		s.log.Warn("Failed to invalidate seat maps", zap.Error(err))
	}

	s.log.Info("Expired stale reservations",
		zap.Int("released", len(released)),
		zap.Time("cutoff", cutoff),
	)
	return len(released), nil
}

func (s *expirySweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("Expiry sweeper started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.log.Error("Periodic sweep failed", zap.Error(err))
			}
		}
	}
}
