package repository

import (
	"context"

	"bookmyseat/internal/data/entity"
	"bookmyseat/pkg/database"
	"bookmyseat/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ScreeningRepository interface {
	Create(ctx context.Context, screening *entity.Screening) error
	// FindByID returns nil, nil when the screening does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Screening, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type screeningRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewScreeningRepository(db database.PgxIface, log *zap.Logger) ScreeningRepository {
	return &screeningRepository{
		db:  db,
		log: log.With(zap.String("repository", "screening")),
	}
}

func (r *screeningRepository) Create(ctx context.Context, screening *entity.Screening) error {
	query := `
		INSERT INTO screenings (id, movie_title, theater_name, starts_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		screening.ID,
		screening.MovieTitle,
		screening.TheaterName,
		screening.StartsAt,
		screening.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create screening",
			zap.Error(err),
			zap.String("movie_title", screening.MovieTitle),
			zap.String("theater_name", screening.TheaterName),
			zap.Time("starts_at", screening.StartsAt),
		)
		return errs.Storage(err, "create screening")
	}

	return nil
}

func (r *screeningRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Screening, error) {
	query := `
		SELECT id, movie_title, theater_name, starts_at, created_at
		FROM screenings
		WHERE id = $1
	`

	var screening entity.Screening
	err := r.db.QueryRow(ctx, query, id).Scan(
		&screening.ID,
		&screening.MovieTitle,
		&screening.TheaterName,
		&screening.StartsAt,
		&screening.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find screening by ID",
			zap.Error(err),
			zap.String("screening_id", id.String()),
		)
		return nil, errs.Storage(err, "find screening "+id.String())
	}

	return &screening, nil
}

// Delete removes a screening together with its seats. Only used to undo a
// half-finished registration, before any seat could have been reserved.
func (r *screeningRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM screenings WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		r.log.Error("Failed to delete screening",
			zap.Error(err),
			zap.String("screening_id", id.String()),
		)
		return errs.Storage(err, "delete screening "+id.String())
	}

	r.log.Info("Screening deleted", zap.String("screening_id", id.String()))
	return nil
}
