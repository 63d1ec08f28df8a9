package usecase

import (
	"context"
	"time"

	"bookmyseat/internal/cache"
	"bookmyseat/internal/data/entity"
	"bookmyseat/internal/data/repository"
	"bookmyseat/internal/dto/request"
	"bookmyseat/internal/dto/response"
	"bookmyseat/pkg/clock"
	"bookmyseat/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reasonAllOrNothing marks seats that were free but handed back because
// another seat in the same all-or-nothing request was not.
const reasonAllOrNothing = "all_or_nothing"

type ReservationService interface {
	ReserveSeats(ctx context.Context, screeningID, holder string, req *request.ReserveSeatsRequest) (*response.ReservationResponse, error)
	ReleaseSeats(ctx context.Context, screeningID, holder string, req *request.ReleaseSeatsRequest) (*response.ReleaseResponse, error)
	ActiveReservations(ctx context.Context, screeningID, holder string) (*response.HolderReservationsResponse, error)
	SeatMap(ctx context.Context, screeningID string) (*response.SeatMapResponse, error)
}

type reservationService struct {
	repo      *repository.Repository
	sweeper   ExpirySweeper
	seatCache cache.SeatMapCache
	clock     clock.Clock
	ttl       time.Duration
	log       *zap.Logger
}

func NewReservationService(
	repo *repository.Repository,
	sweeper ExpirySweeper,
	seatCache cache.SeatMapCache,
	clk clock.Clock,
	config utils.BookingConfig,
	log *zap.Logger,
) ReservationService {
	return &reservationService{
		repo:      repo,
		sweeper:   sweeper,
		seatCache: seatCache,
		clock:     clk,
		ttl:       config.ReservationTTL,
		log:       log.With(zap.String("service", "reservation")),
	}
}

func (s *reservationService) ReserveSeats(ctx context.Context, screeningID, holder string, req *request.ReserveSeatsRequest) (*response.ReservationResponse, error) {
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		s.log.Warn("Reserve seats validation failed", zap.Any("errors", validationErrors))
		return nil, validationFailed(validationErrors)
	}
	if err := requireHolder(holder); err != nil {
		return nil, err
	}

	id, err := parseScreeningID(screeningID)
	if err != nil {
		return nil, err
	}

	seatNumbers := utils.NormalizeSeatNumbers(req.SeatNumbers)
	if len(seatNumbers) == 0 {
		return nil, invalidRequest("no seat numbers given")
	}

	// Reclaim abandoned holds before allocating.
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}

	if _, err := findScreening(ctx, s.repo.Screening, id); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	outcome, err := s.repo.Seat.TryReserve(ctx, id, seatNumbers, holder, now)
	if err != nil {
		return nil, err
	}

	resp := &response.ReservationResponse{
		ScreeningID: id.String(),
		Granted:     outcome.Granted,
		Rejected:    make([]response.RejectedSeatResponse, 0, len(outcome.Rejected)),
	}
	for _, r := range outcome.Rejected {
		resp.Rejected = append(resp.Rejected, response.RejectedSeatResponse{
			SeatNumber: r.SeatNumber,
			Reason:     string(r.Reason),
		})
	}

	if req.AllOrNothing && len(outcome.Rejected) > 0 && len(outcome.Granted) > 0 {
		if err := s.releaseAll(ctx, id, outcome.Granted, holder); err != nil {
			return nil, err
		}
		for _, sn := range outcome.Granted {
			resp.Rejected = append(resp.Rejected, response.RejectedSeatResponse{
				SeatNumber: sn,
				Reason:     reasonAllOrNothing,
			})
		}
		resp.Granted = []string{}
	}

	if len(resp.Granted) > 0 {
		expiresAt := now.Add(s.ttl)
		resp.ExpiresAt = &expiresAt
	}
	if len(outcome.Granted) > 0 {
		s.invalidate(ctx, id)
	}

	s.log.Info("Seats reserved",
		zap.String("screening_id", id.String()),
		zap.String("holder", holder),
		zap.Strings("granted", resp.Granted),
		zap.Int("rejected", len(resp.Rejected)),
		zap.Bool("all_or_nothing", req.AllOrNothing),
	)

	return resp, nil
}

func (s *reservationService) releaseAll(ctx context.Context, screeningID uuid.UUID, seatNumbers []string, holder string) error {
	for _, sn := range seatNumbers {
		if _, err := s.repo.Seat.ReleaseIfStillReservedBy(ctx, screeningID, sn, holder); err != nil {
			// Anything not released here lapses with the TTL.
			s.log.Error("Failed to roll back partial reservation",
				zap.Error(err),
				zap.String("screening_id", screeningID.String()),
				zap.String("seat_number", sn),
			)
			return err
		}
	}
	return nil
}

func (s *reservationService) ReleaseSeats(ctx context.Context, screeningID, holder string, req *request.ReleaseSeatsRequest) (*response.ReleaseResponse, error) {
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, validationFailed(validationErrors)
	}
	if err := requireHolder(holder); err != nil {
		return nil, err
	}

	id, err := parseScreeningID(screeningID)
	if err != nil {
		return nil, err
	}

	if _, err := findScreening(ctx, s.repo.Screening, id); err != nil {
		return nil, err
	}

	seatNumbers := utils.NormalizeSeatNumbers(req.SeatNumbers)
	if len(seatNumbers) == 0 {
		held, err := s.repo.Seat.FindReservedByHolder(ctx, id, holder)
		if err != nil {
			return nil, err
		}
		seatNumbers = seatNumbersOf(held)
	}

	released := make([]string, 0, len(seatNumbers))
	for _, sn := range seatNumbers {
		ok, err := s.repo.Seat.ReleaseIfStillReservedBy(ctx, id, sn, holder)
		if err != nil {
			return nil, err
		}
		if ok {
			released = append(released, sn)
		}
	}

	if len(released) > 0 {
		s.invalidate(ctx, id)
		s.log.Info("Seats released",
			zap.String("screening_id", id.String()),
			zap.String("holder", holder),
			zap.Strings("seats", released),
		)
	}

	return &response.ReleaseResponse{
		ScreeningID: id.String(),
		Released:    released,
	}, nil
}

func (s *reservationService) ActiveReservations(ctx context.Context, screeningID, holder string) (*response.HolderReservationsResponse, error) {
	if err := requireHolder(holder); err != nil {
		return nil, err
	}

	id, err := parseScreeningID(screeningID)
	if err != nil {
		return nil, err
	}

	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}

	if _, err := findScreening(ctx, s.repo.Screening, id); err != nil {
		return nil, err
	}

	held, err := s.repo.Seat.FindReservedByHolder(ctx, id, holder)
	if err != nil {
		return nil, err
	}

	return &response.HolderReservationsResponse{
		ScreeningID: id.String(),
		SeatNumbers: seatNumbersOf(held),
		ExpiresAt:   earliestExpiry(held, s.ttl),
	}, nil
}

func (s *reservationService) SeatMap(ctx context.Context, screeningID string) (*response.SeatMapResponse, error) {
	id, err := parseScreeningID(screeningID)
	if err != nil {
		return nil, err
	}

	states, ok, err := s.seatCache.Get(ctx, id)
	if err != nil {
		s.log.Warn("Seat map cache read failed", zap.Error(err), zap.String("screening_id", id.String()))
	}

	if !ok {
		if _, err := findScreening(ctx, s.repo.Screening, id); err != nil {
			return nil, err
		}
		if _, err := s.sweeper.Sweep(ctx); err != nil {
			return nil, err
		}

		// Read before loading so an invalidation racing the load wins.
		gen, genErr := s.seatCache.Generation(ctx, id)
		if genErr != nil {
			s.log.Warn("Seat map cache generation read failed", zap.Error(genErr), zap.String("screening_id", id.String()))
		}

		seats, err := s.repo.Seat.FindByScreening(ctx, id)
		if err != nil {
			return nil, err
		}

		states = make([]cache.SeatState, 0, len(seats))
		for _, seat := range seats {
			states = append(states, cache.SeatState{SeatNumber: seat.SeatNumber, Status: seat.Status})
		}

		if genErr == nil {
			if err := s.seatCache.Set(ctx, id, gen, states); err != nil {
				s.log.Warn("Seat map cache write failed", zap.Error(err), zap.String("screening_id", id.String()))
			}
		}
	}

	resp := &response.SeatMapResponse{
		ScreeningID: id.String(),
		Seats:       make([]response.SeatResponse, 0, len(states)),
	}
	for _, st := range states {
		if st.Status == entity.SeatStatusAvailable {
			resp.Available++
		}
		resp.Seats = append(resp.Seats, response.SeatResponse{
			SeatNumber: st.SeatNumber,
			Status:     string(st.Status),
		})
	}

	return resp, nil
}

func (s *reservationService) invalidate(ctx context.Context, screeningID uuid.UUID) {
	if err := s.seatCache.Invalidate(ctx, screeningID); err != nil {
		s.log.Warn("Failed to invalidate seat map", zap.Error(err), zap.String("screening_id", screeningID.String()))
	}
}
