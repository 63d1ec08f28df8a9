package repository

import (
	"context"
	"fmt"
	"time"

	"bookmyseat/internal/data/entity"
	"bookmyseat/pkg/database"
	"bookmyseat/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const seatColumns = `id, screening_id, seat_number, status, reserved_by, reserved_at, created_at, updated_at`

type seatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

// NewSeatRepository returns the Postgres seat store. Transitions are single
// conditional UPDATE statements, so the row lock taken by the UPDATE is the
// compare-and-swap.
func NewSeatRepository(db database.PgxIface, log *zap.Logger) SeatStore {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

func (r *seatRepository) CreateSeats(ctx context.Context, screeningID uuid.UUID, seatNumbers []string, now time.Time) ([]*entity.Seat, error) {
	seatNumbers = dedupe(seatNumbers)
	if len(seatNumbers) == 0 {
		return []*entity.Seat{}, nil
	}

	query := `INSERT INTO seats (id, screening_id, seat_number, status, created_at, updated_at) VALUES `
	args := make([]any, 0, len(seatNumbers)*5)
	seats := make([]*entity.Seat, 0, len(seatNumbers))

	for i, sn := range seatNumbers {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			i*5+1, i*5+2, i*5+3, i*5+4, i*5+5, i*5+5)

		seat := &entity.Seat{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			ScreeningID: screeningID,
			SeatNumber:  sn,
			Status:      entity.SeatStatusAvailable,
		}
		seats = append(seats, seat)
		args = append(args, seat.ID, screeningID, sn, string(seat.Status), now)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errs.Mark(errs.Wrap(err, "duplicate seat number"), errs.ErrInvalidRequest)
		}
		r.log.Error("Failed to create seats",
			zap.Error(err),
			zap.String("screening_id", screeningID.String()),
			zap.Int("count", len(seatNumbers)),
		)
		return nil, errs.Storage(err, "create seats")
	}

	return seats, nil
}

func (r *seatRepository) TryReserve(ctx context.Context, screeningID uuid.UUID, seatNumbers []string, holder string, now time.Time) (*ReserveOutcome, error) {
	seatNumbers = dedupe(seatNumbers)
	outcome := &ReserveOutcome{Granted: []string{}, Rejected: []RejectedSeat{}}
	if len(seatNumbers) == 0 {
		return outcome, nil
	}

	granted := make(map[string]struct{}, len(seatNumbers))
	known := make(map[string]struct{}, len(seatNumbers))

	err := database.WithTx(ctx, r.db, r.log, func(tx pgx.Tx) error {
		clear(granted)
		clear(known)

		rows, err := tx.Query(ctx, `
			UPDATE seats
			SET status = 'reserved', reserved_by = $3, reserved_at = $4, updated_at = $4
			WHERE screening_id = $1 AND seat_number = ANY($2) AND status = 'available'
			RETURNING seat_number
		`, screeningID, seatNumbers, holder, now)
		if err != nil {
			return err
		}
		sns, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		for _, sn := range sns {
			granted[sn] = struct{}{}
		}

		if len(granted) == len(seatNumbers) {
			return nil
		}

		rows, err = tx.Query(ctx, `
			SELECT seat_number FROM seats
			WHERE screening_id = $1 AND seat_number = ANY($2)
		`, screeningID, seatNumbers)
		if err != nil {
			return err
		}
		sns, err = pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		for _, sn := range sns {
			known[sn] = struct{}{}
		}
		return nil
	})
	if err != nil {
		r.log.Error("Failed to reserve seats",
			zap.Error(err),
			zap.String("screening_id", screeningID.String()),
			zap.String("holder", holder),
		)
		return nil, errs.Storage(err, "reserve seats")
	}

	for _, sn := range seatNumbers {
		if _, ok := granted[sn]; ok {
			outcome.Granted = append(outcome.Granted, sn)
			continue
		}
		reason := RejectUnavailable
		if _, ok := known[sn]; !ok {
			reason = RejectUnknown
		}
		outcome.Rejected = append(outcome.Rejected, RejectedSeat{SeatNumber: sn, Reason: reason})
	}

	return outcome, nil
}

func (r *seatRepository) ReleaseIfStillReservedBy(ctx context.Context, screeningID uuid.UUID, seatNumber, holder string) (bool, error) {
	query := `
		UPDATE seats
		SET status = 'available', reserved_by = NULL, reserved_at = NULL, updated_at = NOW()
		WHERE screening_id = $1 AND seat_number = $2 AND status = 'reserved' AND reserved_by = $3
	`

	result, err := r.db.Exec(ctx, query, screeningID, seatNumber, holder)
	if err != nil {
		r.log.Error("Failed to release seat",
			zap.Error(err),
			zap.String("screening_id", screeningID.String()),
			zap.String("seat_number", seatNumber),
		)
		return false, errs.Storage(err, "release seat")
	}

	return result.RowsAffected() == 1, nil
}

func (r *seatRepository) ExpireStaleReservations(ctx context.Context, cutoff time.Time) ([]entity.SeatKey, error) {
	query := `
		UPDATE seats
		SET status = 'available', reserved_by = NULL, reserved_at = NULL, updated_at = NOW()
		WHERE status = 'reserved' AND reserved_at < $1
		RETURNING screening_id, seat_number
	`

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		r.log.Error("Failed to expire reservations", zap.Error(err), zap.Time("cutoff", cutoff))
		return nil, errs.Storage(err, "expire reservations")
	}

	keys, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.SeatKey, error) {
		var key entity.SeatKey
		err := row.Scan(&key.ScreeningID, &key.SeatNumber)
		return key, err
	})
	if err != nil {
		r.log.Error("Failed to scan expired seats", zap.Error(err))
		return nil, errs.Storage(err, "expire reservations")
	}

	return keys, nil
}

func (r *seatRepository) CommitBooking(ctx context.Context, screeningID uuid.UUID, seatNumber, holder string, validFrom, now time.Time) (*entity.Booking, error) {
	var booking *entity.Booking

	err := database.WithTx(ctx, r.db, r.log, func(tx pgx.Tx) error {
		var seatID uuid.UUID
		err := tx.QueryRow(ctx, `
			UPDATE seats
			SET status = 'booked', reserved_by = NULL, reserved_at = NULL, updated_at = $5
			WHERE screening_id = $1 AND seat_number = $2
				AND status = 'reserved' AND reserved_by = $3 AND reserved_at >= $4
			RETURNING id
		`, screeningID, seatNumber, holder, validFrom, now).Scan(&seatID)
		if err == pgx.ErrNoRows {
			return errs.Wrapf(errs.ErrConflict, "seat %s", seatNumber)
		}
		if err != nil {
			return err
		}

		b := &entity.Booking{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: now,
			},
			ScreeningID: screeningID,
			SeatID:      seatID,
			SeatNumber:  seatNumber,
			HolderID:    holder,
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO bookings (id, screening_id, seat_id, holder_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, b.ID, b.ScreeningID, b.SeatID, b.HolderID, b.CreatedAt)
		if database.IsUniqueViolation(err) {
			return errs.Wrapf(errs.ErrConflict, "seat %s already has a booking", seatNumber)
		}
		if err != nil {
			return err
		}

		booking = b
		return nil
	})

	if errs.Is(err, errs.ErrConflict) {
		return nil, err
	}
	if err != nil {
		r.log.Error("Failed to commit booking",
			zap.Error(err),
			zap.String("screening_id", screeningID.String()),
			zap.String("seat_number", seatNumber),
		)
		return nil, errs.Storage(err, "commit booking")
	}

	return booking, nil
}

func (r *seatRepository) FindReservedByHolder(ctx context.Context, screeningID uuid.UUID, holder string) ([]*entity.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE screening_id = $1 AND status = 'reserved' AND reserved_by = $2
		ORDER BY seat_number
	`

	seats, err := r.querySeats(ctx, query, screeningID, holder)
	if err != nil {
		r.log.Error("Failed to find reserved seats",
			zap.Error(err),
			zap.String("screening_id", screeningID.String()),
			zap.String("holder", holder),
		)
		return nil, errs.Storage(err, "find reserved seats")
	}

	return seats, nil
}

func (r *seatRepository) FindByScreening(ctx context.Context, screeningID uuid.UUID) ([]*entity.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE screening_id = $1
		ORDER BY seat_number
	`

	seats, err := r.querySeats(ctx, query, screeningID)
	if err != nil {
		r.log.Error("Failed to find seats by screening",
			zap.Error(err),
			zap.String("screening_id", screeningID.String()),
		)
		return nil, errs.Storage(err, "find seats")
	}

	return seats, nil
}

func (r *seatRepository) querySeats(ctx context.Context, query string, args ...any) ([]*entity.Seat, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := []*entity.Seat{}
	for rows.Next() {
		var seat entity.Seat
		err := rows.Scan(
			&seat.ID,
			&seat.ScreeningID,
			&seat.SeatNumber,
			&seat.Status,
			&seat.ReservedBy,
			&seat.ReservedAt,
			&seat.CreatedAt,
			&seat.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		seats = append(seats, &seat)
	}

	return seats, rows.Err()
}
