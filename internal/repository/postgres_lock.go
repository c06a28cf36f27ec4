package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ticketnest/booking-engine/internal/domain"
)

type PostgresLockRepository struct {
	db *pgxpool.Pool
}

func NewPostgresLockRepository(db *pgxpool.Pool) *PostgresLockRepository {
	return &PostgresLockRepository{
		db: db,
	}
}

func (p *PostgresLockRepository) ListActive(
	ctx context.Context,
	showtimeID,
	userID uuid.UUID) (*domain.ActiveLocks, error) {

	var locks *domain.ActiveLocks

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		err := purgeExpiredLocks(ctx, tx)
		if err != nil {
			return err
		}

		query := `
			SELECT seat_id, user_id
			FROM seat_locks
			WHERE showtime_id = $1 AND expires_at > NOW()
		`

		rows, err := tx.Query(ctx, query, showtimeID)
		if err != nil {
			return err
		}
		defer rows.Close()

		locks = &domain.ActiveLocks{
			LockedByOthers: make([]uuid.UUID, 0),
			Mine:           make([]uuid.UUID, 0),
		}

		for rows.Next() {
			var seatID, holderID uuid.UUID

			err = rows.Scan(&seatID, &holderID)
			if err != nil {
				return err
			}

			if holderID == userID {
				locks.Mine = append(locks.Mine, seatID)
			} else {
				locks.LockedByOthers = append(locks.LockedByOthers, seatID)
			}
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return locks, nil
}

func (p *PostgresLockRepository) Lock(
	ctx context.Context,
	showtimeID,
	userID uuid.UUID,
	seatIDs []uuid.UUID,
	ttl time.Duration) (time.Time, error) {

	expiresAt := time.Now().Add(ttl).UTC()

	if len(seatIDs) == 0 {
		return expiresAt, nil
	}

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		err := purgeExpiredLocks(ctx, tx)
		if err != nil {
			return err
		}

		err = checkSeatsNotHeldByOthers(ctx, tx, showtimeID, userID, seatIDs)
		if err != nil {
			return err
		}

		err = checkSeatsNotConfirmed(ctx, tx, showtimeID, seatIDs)
		if err != nil {
			return err
		}

		return claimSeatLocks(ctx, tx, showtimeID, userID, seatIDs, expiresAt)
	})

	if err != nil {
		return time.Time{}, err
	}

	return expiresAt, nil
}

func (p *PostgresLockRepository) Release(
	ctx context.Context,
	showtimeID,
	userID uuid.UUID,
	seatIDs []uuid.UUID) ([]uuid.UUID, error) {

	released := make([]uuid.UUID, 0, len(seatIDs))

	if len(seatIDs) == 0 {
		return released, nil
	}

	query := `
		DELETE FROM seat_locks
		WHERE showtime_id = $1 AND user_id = $2 AND seat_id = ANY($3)
		RETURNING seat_id
	`

	rows, err := p.db.Query(ctx, query, showtimeID, userID, seatIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var seatID uuid.UUID

		err = rows.Scan(&seatID)
		if err != nil {
			return nil, err
		}

		released = append(released, seatID)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return released, nil
}

// purgeExpiredLocks reaps rows past their expiry. Every lock-table
// transaction runs it first, so correctness never depends on a
// background sweeper.
func purgeExpiredLocks(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `DELETE FROM seat_locks WHERE expires_at <= NOW()`)
	return err
}

func checkSeatsNotHeldByOthers(
	ctx context.Context,
	tx pgx.Tx,
	showtimeID,
	userID uuid.UUID,
	seatIDs []uuid.UUID) error {

	query := `
		SELECT user_id
		FROM seat_locks
		WHERE showtime_id = $1 AND seat_id = ANY($2) AND expires_at > NOW()
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, showtimeID, seatIDs)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var holderID uuid.UUID

		err = rows.Scan(&holderID)
		if err != nil {
			return err
		}

		if holderID != userID {
			return domain.ErrSeatsAlreadyLocked
		}
	}

	return rows.Err()
}

func checkSeatsNotConfirmed(ctx context.Context, tx pgx.Tx, showtimeID uuid.UUID, seatIDs []uuid.UUID) error {
	query := `
		SELECT COUNT(*)
		FROM booking_seats bs
		JOIN bookings b ON bs.booking_id = b.id
		WHERE b.showtime_id = $1 AND b.status = 'CONFIRMED' AND bs.seat_id = ANY($2)
	`

	var count int

	err := tx.QueryRow(ctx, query, showtimeID, seatIDs).Scan(&count)
	if err != nil {
		return err
	}

	if count > 0 {
		return domain.ErrSeatsAlreadyBooked
	}

	return nil
}

// claimSeatLocks inserts or refreshes one lock per seat. The upsert
// only updates rows already held by the same user, so a row claimed by
// a racing writer is skipped and the RETURNING count comes up short —
// the database, not a read, decides the loser.
func claimSeatLocks(
	ctx context.Context,
	tx pgx.Tx,
	showtimeID,
	userID uuid.UUID,
	seatIDs []uuid.UUID,
	expiresAt time.Time) error {

	query := `
		INSERT INTO seat_locks (showtime_id, seat_id, user_id, expires_at)
		SELECT $1, seat_id, $2, $3
		FROM UNNEST($4::uuid[]) AS seat_id
		ON CONFLICT (showtime_id, seat_id)
		DO UPDATE SET expires_at = EXCLUDED.expires_at
		WHERE seat_locks.user_id = EXCLUDED.user_id
		RETURNING seat_id
	`

	rows, err := tx.Query(ctx, query, showtimeID, userID, expiresAt, seatIDs)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSeatsAlreadyLocked
		}
		return err
	}
	defer rows.Close()

	claimed := 0
	for rows.Next() {
		var seatID uuid.UUID

		err = rows.Scan(&seatID)
		if err != nil {
			return err
		}

		claimed++
	}

	if err = rows.Err(); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSeatsAlreadyLocked
		}
		return err
	}

	if claimed != len(seatIDs) {
		return domain.ErrSeatsAlreadyLocked
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
