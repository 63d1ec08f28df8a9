package usecase

import (
	"context"

	"bookmyseat/internal/data/entity"
	"bookmyseat/internal/data/repository"
	"bookmyseat/internal/dto/response"
	"bookmyseat/pkg/utils"

	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"
)

const reportTopN = 5

// ReportService aggregates bookings for the admin dashboard. Read-only.
type ReportService interface {
	Summary(ctx context.Context) (*response.ReportResponse, error)
}

type reportService struct {
	bookings repository.BookingRepository
	config   utils.BookingConfig
	log      *zap.Logger
}

func NewReportService(bookings repository.BookingRepository, config utils.BookingConfig, log *zap.Logger) ReportService {
	return &reportService{
		bookings: bookings,
		config:   config,
		log:      log.With(zap.String("service", "report")),
	}
}

func (s *reportService) Summary(ctx context.Context) (*response.ReportResponse, error) {
	var (
		total    int64
		movies   []entity.RankedCount
		theaters []entity.RankedCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.bookings.CountAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		movies, err = s.bookings.TopMovies(gctx, reportTopN)
		return err
	})
	g.Go(func() error {
		var err error
		theaters, err = s.bookings.TopTheaters(gctx, reportTopN)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to build report", zap.Error(err))
		return nil, err
	}

	return &response.ReportResponse{
		TotalBookings: total,
		TotalRevenue:  total * s.config.PricePerSeat,
		Currency:      s.config.Currency,
		PopularMovies: toRanked(movies),
		BusyTheaters:  toRanked(theaters),
	}, nil
}

func toRanked(rows []entity.RankedCount) []response.RankedResponse {
	out := make([]response.RankedResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, response.RankedResponse{Name: r.Name, Bookings: r.Count})
	}
	return out
}
