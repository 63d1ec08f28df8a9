package usecase

import (
	"context"
	"strings"

	"bookmyseat/internal/data/entity"
	"bookmyseat/internal/data/repository"
	"bookmyseat/internal/dto/request"
	"bookmyseat/internal/dto/response"
	"bookmyseat/pkg/clock"
	"bookmyseat/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService registers screenings and their seat topology. Screenings
// are immutable once created.
type CatalogService interface {
	RegisterScreening(ctx context.Context, req *request.CreateScreeningRequest) (*response.ScreeningResponse, error)
	GetScreening(ctx context.Context, screeningID string) (*response.ScreeningResponse, error)
}

type catalogService struct {
	repo  *repository.Repository
	clock clock.Clock
	log   *zap.Logger
}

func NewCatalogService(repo *repository.Repository, clk clock.Clock, log *zap.Logger) CatalogService {
	return &catalogService{
		repo:  repo,
		clock: clk,
		log:   log.With(zap.String("service", "catalog")),
	}
}

func (s *catalogService) RegisterScreening(ctx context.Context, req *request.CreateScreeningRequest) (*response.ScreeningResponse, error) {
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		s.log.Warn("Register screening validation failed", zap.Any("errors", validationErrors))
		return nil, validationFailed(validationErrors)
	}
	if req.StartsAt.IsZero() {
		return nil, invalidRequest("validation failed: starts_at: This field is required")
	}

	seatNumbers := utils.NormalizeSeatNumbers(req.SeatNumbers)
	if len(seatNumbers) != len(req.SeatNumbers) {
		return nil, invalidRequest("seat numbers must be unique and non-empty")
	}

	now := s.clock.Now()
	screening := &entity.Screening{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		MovieTitle:  strings.TrimSpace(req.MovieTitle),
		TheaterName: strings.TrimSpace(req.TheaterName),
		StartsAt:    req.StartsAt.UTC(),
	}

	if err := s.repo.Screening.Create(ctx, screening); err != nil {
		return nil, err
	}

	seats, err := s.repo.Seat.CreateSeats(ctx, screening.ID, seatNumbers, now)
	if err != nil {
		// Rollback: no seat of this screening can be held yet.
		if delErr := s.repo.Screening.Delete(ctx, screening.ID); delErr != nil {
			s.log.Error("Failed to roll back screening",
				zap.Error(delErr),
				zap.String("screening_id", screening.ID.String()),
			)
		}
		return nil, err
	}

	s.log.Info("Screening registered",
		zap.String("screening_id", screening.ID.String()),
		zap.String("movie_title", screening.MovieTitle),
		zap.String("theater_name", screening.TheaterName),
		zap.Int("seats", len(seats)),
	)

	resp := toScreeningResponse(screening)
	resp.SeatCount = len(seats)
	return resp, nil
}

func (s *catalogService) GetScreening(ctx context.Context, screeningID string) (*response.ScreeningResponse, error) {
	id, err := parseScreeningID(screeningID)
	if err != nil {
		return nil, err
	}

	screening, err := findScreening(ctx, s.repo.Screening, id)
	if err != nil {
		return nil, err
	}

	seats, err := s.repo.Seat.FindByScreening(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := toScreeningResponse(screening)
	resp.SeatCount = len(seats)
	return resp, nil
}

func toScreeningResponse(s *entity.Screening) *response.ScreeningResponse {
	return &response.ScreeningResponse{
		ID:          s.ID.String(),
		MovieTitle:  s.MovieTitle,
		TheaterName: s.TheaterName,
		StartsAt:    s.StartsAt,
	}
}
