package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ticketnest/booking-engine/internal/domain"
)

type PostgresSeatRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSeatRepository(db *pgxpool.Pool) *PostgresSeatRepository {
	return &PostgresSeatRepository{
		db: db,
	}
}

func (p *PostgresSeatRepository) GetSeatsByShowtime(ctx context.Context, showtimeID uuid.UUID) ([]domain.Seat, error) {
	query := `
		SELECT s.id, s.hall_id, s.row_label, s.seat_number, s.seat_type, s.is_active
		FROM seats s
		JOIN showtimes st ON st.hall_id = s.hall_id
		WHERE st.id = $1 AND s.is_active
		ORDER BY s.row_label, s.seat_number
	`

	rows, err := p.db.Query(ctx, query, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSeats(rows)
}

func (p *PostgresSeatRepository) GetActiveSeatsByShowtimeAndIds(
	ctx context.Context,
	showtimeID uuid.UUID,
	seatIDs []uuid.UUID) ([]domain.Seat, error) {

	query := `
		SELECT s.id, s.hall_id, s.row_label, s.seat_number, s.seat_type, s.is_active
		FROM seats s
		JOIN showtimes st ON st.hall_id = s.hall_id
		WHERE st.id = $1 AND s.is_active AND s.id = ANY($2)
		ORDER BY s.row_label, s.seat_number
	`

	rows, err := p.db.Query(ctx, query, showtimeID, seatIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSeats(rows)
}

func scanSeats(rows pgx.Rows) ([]domain.Seat, error) {
	seats := make([]domain.Seat, 0)

	for rows.Next() {
		var seat domain.Seat

		err := rows.Scan(
			&seat.ID,
			&seat.HallID,
			&seat.RowLabel,
			&seat.SeatNumber,
			&seat.SeatType,
			&seat.IsActive,
		)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}
