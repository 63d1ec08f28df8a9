package repository

import (
	"context"
	"fmt"

	"bookmyseat/internal/data/entity"
	"bookmyseat/pkg/database"
	"bookmyseat/pkg/errs"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// BookingRepository serves read-only views over bookings. Bookings are only
// ever written by SeatStore.CommitBooking.
type BookingRepository interface {
	FindByHolder(ctx context.Context, holder string) ([]*entity.BookingDetail, error)
	CountAll(ctx context.Context) (int64, error)
	TopMovies(ctx context.Context, limit int) ([]entity.RankedCount, error)
	TopTheaters(ctx context.Context, limit int) ([]entity.RankedCount, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) FindByHolder(ctx context.Context, holder string) ([]*entity.BookingDetail, error) {
	query := `
		SELECT b.id, b.screening_id, b.seat_id, s.seat_number, b.holder_id, b.created_at,
			sc.movie_title, sc.theater_name, sc.starts_at
		FROM bookings b
		JOIN seats s ON s.id = b.seat_id
		JOIN screenings sc ON sc.id = b.screening_id
		WHERE b.holder_id = $1
		ORDER BY b.created_at DESC, s.seat_number
	`

	rows, err := r.db.Query(ctx, query, holder)
	if err != nil {
		r.log.Error("Failed to find bookings by holder",
			zap.Error(err),
			zap.String("holder", holder),
		)
		return nil, errs.Storage(err, "find bookings by holder")
	}
	defer rows.Close()

	bookings := []*entity.BookingDetail{}
	for rows.Next() {
		var booking entity.BookingDetail
		err := rows.Scan(
			&booking.ID,
			&booking.ScreeningID,
			&booking.SeatID,
			&booking.SeatNumber,
			&booking.HolderID,
			&booking.CreatedAt,
			&booking.MovieTitle,
			&booking.TheaterName,
			&booking.StartsAt,
		)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, errs.Storage(err, "scan booking row")
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

func (r *bookingRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, errs.Storage(err, "count bookings")
	}

	return count, nil
}

func (r *bookingRepository) TopMovies(ctx context.Context, limit int) ([]entity.RankedCount, error) {
	return r.rankBy(ctx, "sc.movie_title", limit)
}

func (r *bookingRepository) TopTheaters(ctx context.Context, limit int) ([]entity.RankedCount, error) {
	return r.rankBy(ctx, "sc.theater_name", limit)
}

// rankBy groups bookings by a screening column. column is never user input.
func (r *bookingRepository) rankBy(ctx context.Context, column string, limit int) ([]entity.RankedCount, error) {
	query := fmt.Sprintf(`
		SELECT %[1]s AS name, COUNT(*) AS count
		FROM bookings b
		JOIN screenings sc ON sc.id = b.screening_id
		GROUP BY %[1]s
		ORDER BY count DESC, name
		LIMIT $1
	`, column)

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.log.Error("Failed to rank bookings", zap.Error(err), zap.String("column", column))
		return nil, errs.Storage(err, "rank bookings")
	}

	ranked, err := pgx.CollectRows(rows, pgx.RowToStructByName[entity.RankedCount])
	if err != nil {
		r.log.Error("Failed to scan ranking row", zap.Error(err))
		return nil, errs.Storage(err, "scan ranking row")
	}

	return ranked, nil
}
