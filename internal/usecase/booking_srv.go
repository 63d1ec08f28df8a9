package usecase

import (
	"context"
	"time"

	"bookmyseat/internal/cache"
	"bookmyseat/internal/data/entity"
	"bookmyseat/internal/data/repository"
	"bookmyseat/internal/dto/response"
	"bookmyseat/internal/notify"
	"bookmyseat/pkg/clock"
	"bookmyseat/pkg/errs"
	"bookmyseat/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// FinalizeBookings is called by the payment collaborator after a
	// successful charge. Seats whose hold lapsed are reported in Failed;
	// seats a concurrent call of the same holder booked are in AlreadyBooked.
	// On a storage error the partial result is returned with the error:
	// Bookings holds what was committed and Unprocessed what was not tried.
	FinalizeBookings(ctx context.Context, screeningID, holder string) (*response.FinalizeResponse, error)
	PaymentQuote(ctx context.Context, screeningID, holder string) (*response.PaymentQuoteResponse, error)
	HolderBookings(ctx context.Context, holder string) ([]*response.BookingHistoryResponse, error)
}

type bookingService struct {
	repo      *repository.Repository
	sweeper   ExpirySweeper
	seatCache cache.SeatMapCache
	notifier  notify.Sender
	clock     clock.Clock
	config    utils.BookingConfig
	log       *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	sweeper ExpirySweeper,
	seatCache cache.SeatMapCache,
	notifier notify.Sender,
	clk clock.Clock,
	config utils.BookingConfig,
	log *zap.Logger,
) BookingService {
	if config.NotifyTimeout <= 0 {
		config.NotifyTimeout = 5 * time.Second
	}
	return &bookingService{
		repo:      repo,
		sweeper:   sweeper,
		seatCache: seatCache,
		notifier:  notifier,
		clock:     clk,
		config:    config,
		log:       log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) FinalizeBookings(ctx context.Context, screeningID, holder string) (*response.FinalizeResponse, error) {
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

	screening, err := findScreening(ctx, s.repo.Screening, id)
	if err != nil {
		return nil, err
	}

	resp := &response.FinalizeResponse{
		ScreeningID:   id.String(),
		Bookings:      []response.BookingResponse{},
		Failed:        []string{},
		AlreadyBooked: []string{},
		Currency:      s.config.Currency,
	}

	held, err := s.repo.Seat.FindReservedByHolder(ctx, id, holder)
	if err != nil {
		return nil, err
	}
	if len(held) == 0 {
		s.log.Info("Nothing to finalize",
			zap.String("screening_id", id.String()),
			zap.String("holder", holder),
		)
		return resp, nil
	}

	now := s.clock.Now()
	validFrom := now.Add(-s.config.ReservationTTL)

	var (
		bookings   = make([]*entity.Booking, 0, len(held))
		conflicted []string
		commitErr  error
	)
	for i, seat := range held {
		booking, err := s.repo.Seat.CommitBooking(ctx, id, seat.SeatNumber, holder, validFrom, now)
		if errs.Is(err, errs.ErrConflict) {
			conflicted = append(conflicted, seat.SeatNumber)
			continue
		}
		if err != nil {
			commitErr = err
			resp.Unprocessed = seatNumbersOf(held[i:])
			break
		}

		bookings = append(bookings, booking)
		resp.Bookings = append(resp.Bookings, response.BookingResponse{
			ID:          booking.ID.String(),
			ScreeningID: booking.ScreeningID.String(),
			SeatNumber:  booking.SeatNumber,
			BookedAt:    booking.CreatedAt,
		})
	}

	if len(conflicted) > 0 {
		owned, err := s.bookedByHolder(ctx, id, holder)
		if err != nil {
			// Unknown outcome: never report these as failed.
			resp.Unprocessed = append(resp.Unprocessed, conflicted...)
			if commitErr == nil {
				commitErr = err
			}
		} else {
			for _, sn := range conflicted {
				if _, ok := owned[sn]; ok {
					resp.AlreadyBooked = append(resp.AlreadyBooked, sn)
					continue
				}
				s.log.Warn("Hold no longer valid at commit",
					zap.String("screening_id", id.String()),
					zap.String("holder", holder),
					zap.String("seat_number", sn),
				)
				resp.Failed = append(resp.Failed, sn)
			}
		}
	}

	resp.TotalAmount = int64(len(bookings)) * s.config.PricePerSeat

	if len(bookings) > 0 {
		s.invalidate(ctx, id)
		s.sendConfirmation(screening, holder, bookings, resp.TotalAmount, now)
	}

	if commitErr != nil {
		s.log.Error("Finalization stopped early",
			zap.Error(commitErr),
			zap.String("screening_id", id.String()),
			zap.String("holder", holder),
			zap.Int("committed", len(bookings)),
			zap.Strings("unprocessed", resp.Unprocessed),
		)
		return resp, commitErr
	}

	s.log.Info("Bookings finalized",
		zap.String("screening_id", id.String()),
		zap.String("holder", holder),
		zap.Int("booked", len(bookings)),
		zap.Strings("already_booked", resp.AlreadyBooked),
		zap.Strings("failed", resp.Failed),
		zap.Int64("total_amount", resp.TotalAmount),
	)

	return resp, nil
}

// sendConfirmation runs detached from the request context and never blocks
// the caller.
func (s *bookingService) sendConfirmation(screening *entity.Screening, holder string, bookings []*entity.Booking, total int64, now time.Time) {
	event := notify.BookingConfirmedEvent{
		ScreeningID: screening.ID.String(),
		HolderID:    holder,
		MovieTitle:  screening.MovieTitle,
		TheaterName: screening.TheaterName,
		StartsAt:    screening.StartsAt,
		BookingIDs:  make([]string, 0, len(bookings)),
		Seats:       make([]string, 0, len(bookings)),
		TotalAmount: total,
		Currency:    s.config.Currency,
		ConfirmedAt: now,
	}
	for _, b := range bookings {
		event.BookingIDs = append(event.BookingIDs, b.ID.String())
		event.Seats = append(event.Seats, b.SeatNumber)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.NotifyTimeout)
		defer cancel()

		if err := s.notifier.BookingsConfirmed(ctx, event); err != nil {
			s.log.Warn("Booking confirmation not delivered",
				zap.Error(err),
				zap.String("screening_id", event.ScreeningID),
				zap.String("holder", holder),
			)
		}
	}()
}

func (s *bookingService) PaymentQuote(ctx context.Context, screeningID, holder string) (*response.PaymentQuoteResponse, error) {
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

	return &response.PaymentQuoteResponse{
		ScreeningID:  id.String(),
		SeatNumbers:  seatNumbersOf(held),
		SeatCount:    len(held),
		PricePerSeat: s.config.PricePerSeat,
		TotalAmount:  int64(len(held)) * s.config.PricePerSeat,
		Currency:     s.config.Currency,
		ExpiresAt:    earliestExpiry(held, s.config.ReservationTTL),
	}, nil
}

func (s *bookingService) HolderBookings(ctx context.Context, holder string) ([]*response.BookingHistoryResponse, error) {
	if err := requireHolder(holder); err != nil {
		return nil, err
	}

	bookings, err := s.repo.Booking.FindByHolder(ctx, holder)
	if err != nil {
		return nil, err
	}

	out := make([]*response.BookingHistoryResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, &response.BookingHistoryResponse{
			ID:          b.ID.String(),
			ScreeningID: b.ScreeningID.String(),
			SeatNumber:  b.SeatNumber,
			MovieTitle:  b.MovieTitle,
			TheaterName: b.TheaterName,
			StartsAt:    b.StartsAt,
			BookedAt:    b.CreatedAt,
		})
	}

	return out, nil
}

// bookedByHolder returns the seat numbers holder already owns in the screening.
func (s *bookingService) bookedByHolder(ctx context.Context, screeningID uuid.UUID, holder string) (map[string]struct{}, error) {
	bookings, err := s.repo.Booking.FindByHolder(ctx, holder)
	if err != nil {
		return nil, err
	}

	owned := make(map[string]struct{}, len(bookings))
	for _, b := range bookings {
		if b.ScreeningID == screeningID {
			owned[b.SeatNumber] = struct{}{}
		}
	}
	return owned, nil
}

func (s *bookingService) invalidate(ctx context.Context, screeningID uuid.UUID) {
	if err := s.seatCache.Invalidate(ctx, screeningID); err != nil {
		s.log.Warn("Failed to invalidate seat map", zap.Error(err), zap.String("screening_id", screeningID.String()))
	}
}
