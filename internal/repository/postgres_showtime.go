package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ticketnest/booking-engine/internal/domain"
)

type PostgresShowtimeRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowtimeRepository(db *pgxpool.Pool) *PostgresShowtimeRepository {
	return &PostgresShowtimeRepository{
		db: db,
	}
}

func (p *PostgresShowtimeRepository) GetById(ctx context.Context, id uuid.UUID) (*domain.Showtime, error) {
	query := `
		SELECT st.id, st.movie_id, st.hall_id, m.title, h.name, st.starts_at, st.base_price_cents
		FROM showtimes st
		JOIN movies m ON st.movie_id = m.id
		JOIN halls h ON st.hall_id = h.id
		WHERE st.id = $1
	`

	showtime := &domain.Showtime{}

	err := p.db.QueryRow(ctx, query, id).Scan(
		&showtime.ID,
		&showtime.MovieID,
		&showtime.HallID,
		&showtime.MovieTitle,
		&showtime.HallName,
		&showtime.StartsAt,
		&showtime.BasePriceCents,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return showtime, nil
}
