package usecase

import (
	"context"
	"fmt"
	"time"

	"bookmyseat/internal/cache"
	"bookmyseat/internal/data/entity"
	"bookmyseat/internal/data/repository"
	"bookmyseat/internal/notify"
	"bookmyseat/pkg/clock"
	"bookmyseat/pkg/errs"
	"bookmyseat/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	Sweeper     ExpirySweeper
	Reservation ReservationService
	Booking     BookingService
	Catalog     CatalogService
	Report      ReportService
}

func NewService(
	repo *repository.Repository,
	seatCache cache.SeatMapCache,
	notifier notify.Sender,
	clk clock.Clock,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	sweeper := NewExpirySweeper(repo.Seat, seatCache, clk, config.Booking.ReservationTTL, log)

	return &Service{
		Sweeper:     sweeper,
		Reservation: NewReservationService(repo, sweeper, seatCache, clk, config.Booking, log),
		Booking:     NewBookingService(repo, sweeper, seatCache, notifier, clk, config.Booking, log),
		Catalog:     NewCatalogService(repo, clk, log),
		Report:      NewReportService(repo.Booking, config.Booking, log),
	}
}

func invalidRequest(format string, args ...any) error {
	return errs.Mark(fmt.Errorf(format, args...), errs.ErrInvalidRequest)
}

func validationFailed(validationErrors map[string]string) error {
	return invalidRequest("validation failed: %s", utils.FormatValidationErrors(validationErrors))
}

func parseScreeningID(id string) (uuid.UUID, error) {
	screeningID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, invalidRequest("invalid screening ID format %s", id)
	}
	return screeningID, nil
}

func requireHolder(holder string) error {
	if holder == "" {
		return errs.Mark(errs.New("holder identity required"), errs.ErrForbidden)
	}
	return nil
}

func findScreening(ctx context.Context, screenings repository.ScreeningRepository, id uuid.UUID) (*entity.Screening, error) {
	screening, err := screenings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if screening == nil {
		return nil, errs.Wrapf(errs.ErrScreeningNotFound, "screening %s", id.String())
	}
	return screening, nil
}

// earliestExpiry returns when the first of the given holds lapses.
func earliestExpiry(seats []*entity.Seat, ttl time.Duration) *time.Time {
	var earliest time.Time
	for _, seat := range seats {
		until := seat.ReservedUntil(ttl)
		if until.IsZero() {
			continue
		}
		if earliest.IsZero() || until.Before(earliest) {
			earliest = until
		}
	}
	if earliest.IsZero() {
		return nil
	}
	return &earliest
}

func seatNumbersOf(seats []*entity.Seat) []string {
	out := make([]string, 0, len(seats))
	for _, seat := range seats {
		out = append(out, seat.SeatNumber)
	}
	return out
}
