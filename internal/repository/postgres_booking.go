package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ticketnest/booking-engine/internal/domain"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

func (p *PostgresBookingRepository) Initiate(
	ctx context.Context,
	params domain.InitiateBookingParams) (*domain.Booking, error) {

	var booking *domain.Booking

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		err := purgeExpiredLocks(ctx, tx)
		if err != nil {
			return err
		}

		if params.PendingTTL > 0 {
			err = purgeExpiredPendingBookings(ctx, tx, params.ShowtimeID, params.PendingTTL)
			if err != nil {
				return err
			}
		}

		err = checkSeatsNotHeldByOthers(ctx, tx, params.ShowtimeID, params.UserID, params.SeatIDs)
		if err != nil {
			return err
		}

		err = checkSeatsNotConfirmed(ctx, tx, params.ShowtimeID, params.SeatIDs)
		if err != nil {
			return err
		}

		var basePriceCents int64

		err = tx.QueryRow(
			ctx,
			`SELECT base_price_cents FROM showtimes WHERE id = $1`,
			params.ShowtimeID).Scan(&basePriceCents)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}
			return err
		}

		// Claiming the locks inside the same transaction is the
		// serialization point: a racing initiation for an overlapping
		// seat set loses here and the whole transaction rolls back.
		expiresAt := time.Now().Add(params.LockTTL).UTC()

		err = claimSeatLocks(ctx, tx, params.ShowtimeID, params.UserID, params.SeatIDs, expiresAt)
		if err != nil {
			return err
		}

		total := basePriceCents * int64(len(params.SeatIDs))

		booking = &domain.Booking{
			UserID:           params.UserID,
			ShowtimeID:       params.ShowtimeID,
			TotalAmountCents: total,
		}

		query := `
			INSERT INTO bookings (user_id, showtime_id, total_amount_cents)
			VALUES ($1, $2, $3)
			RETURNING id, status, payment_status, created_at
		`

		err = tx.QueryRow(ctx, query, params.UserID, params.ShowtimeID, total).Scan(
			&booking.ID,
			&booking.Status,
			&booking.PaymentStatus,
			&booking.CreatedAt,
		)
		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(params.SeatIDs))
		for _, seatID := range params.SeatIDs {
			rows = append(rows, []any{
				booking.ID,
				params.ShowtimeID,
				seatID,
				basePriceCents,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"booking_seats"},
			[]string{"booking_id", "showtime_id", "seat_id", "price_cents"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return err
		}

		booking.Seats = make([]domain.BookingSeat, 0, len(params.SeatIDs))
		for _, seatID := range params.SeatIDs {
			booking.Seats = append(booking.Seats, domain.BookingSeat{
				BookingID:  booking.ID,
				ShowtimeID: params.ShowtimeID,
				SeatID:     seatID,
				PriceCents: basePriceCents,
			})
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return booking, nil
}

// purgeExpiredPendingBookings deletes abandoned PENDING bookings older
// than the configured TTL so their seats become claimable again. The
// booking_seats rows and any checkout payments go with them via
// cascade.
func purgeExpiredPendingBookings(
	ctx context.Context,
	tx pgx.Tx,
	showtimeID uuid.UUID,
	ttl time.Duration) error {

	cutoff := time.Now().Add(-ttl).UTC()

	_, err := tx.Exec(
		ctx,
		`DELETE FROM bookings WHERE showtime_id = $1 AND status = 'PENDING' AND created_at <= $2`,
		showtimeID,
		cutoff,
	)

	return err
}

func (p *PostgresBookingRepository) Confirm(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, bool, error) {
	var booking *domain.Booking
	var transitioned bool

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			SELECT id, user_id, showtime_id, status, total_amount_cents, payment_status,
				booking_code, qr_payload, created_at
			FROM bookings
			WHERE id = $1
			FOR UPDATE
		`

		booking = &domain.Booking{}

		err := tx.QueryRow(ctx, query, bookingID).Scan(
			&booking.ID,
			&booking.UserID,
			&booking.ShowtimeID,
			&booking.Status,
			&booking.TotalAmountCents,
			&booking.PaymentStatus,
			&booking.BookingCode,
			&booking.QRPayload,
			&booking.CreatedAt,
		)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}
			return err
		}

		// Payment webhooks are retried by the provider; a booking that
		// is already confirmed keeps its original code and QR payload.
		if booking.Status == domain.BookingStatusConfirmed {
			booking.Seats, err = retrieveBookingSeats(ctx, tx, booking.ID)
			return err
		}

		code := domain.NewBookingCode()
		qrPayload := domain.NewQRPayload(booking.ID, code)

		_, err = tx.Exec(
			ctx,
			`UPDATE bookings
			SET status = 'CONFIRMED', payment_status = 'PAID', booking_code = $1, qr_payload = $2
			WHERE id = $3`,
			code,
			qrPayload,
			booking.ID,
		)
		if err != nil {
			return err
		}

		// The partial unique index over confirmed seats rejects this
		// update when another confirmed booking already owns one of
		// the seats.
		_, err = tx.Exec(ctx, `UPDATE booking_seats SET confirmed = TRUE WHERE booking_id = $1`, booking.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrSeatsAlreadyBooked
			}
			return err
		}

		// Confirmation moves the authoritative seat state from locked
		// to booked; stale locks for the showtime carry no meaning and
		// are cleared wholesale.
		_, err = tx.Exec(ctx, `DELETE FROM seat_locks WHERE showtime_id = $1`, booking.ShowtimeID)
		if err != nil {
			return err
		}

		booking.Status = domain.BookingStatusConfirmed
		booking.PaymentStatus = domain.PaymentStatePaid
		booking.BookingCode = &code
		booking.QRPayload = &qrPayload
		transitioned = true

		booking.Seats, err = retrieveBookingSeats(ctx, tx, booking.ID)
		return err
	})

	if err != nil {
		return nil, false, err
	}

	return booking, transitioned, nil
}

func (p *PostgresBookingRepository) GetById(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `
		SELECT id, user_id, showtime_id, status, total_amount_cents, payment_status,
			booking_code, qr_payload, created_at
		FROM bookings
		WHERE id = $1
	`

	booking := &domain.Booking{}

	err := p.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ShowtimeID,
		&booking.Status,
		&booking.TotalAmountCents,
		&booking.PaymentStatus,
		&booking.BookingCode,
		&booking.QRPayload,
		&booking.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	booking.Seats, err = p.retrieveBookingSeatsFromPool(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	return booking, nil
}

func (p *PostgresBookingRepository) GetBookingsByUserId(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	query := `
		SELECT id, user_id, showtime_id, status, total_amount_cents, payment_status,
			booking_code, qr_payload, created_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)

	for rows.Next() {
		var booking domain.Booking

		err = rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.ShowtimeID,
			&booking.Status,
			&booking.TotalAmountCents,
			&booking.PaymentStatus,
			&booking.BookingCode,
			&booking.QRPayload,
			&booking.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (p *PostgresBookingRepository) GetBookedSeatIdsByShowtimeId(
	ctx context.Context,
	showtimeID uuid.UUID) ([]uuid.UUID, error) {

	query := `
		SELECT bs.seat_id
		FROM booking_seats bs
		JOIN bookings b ON bs.booking_id = b.id
		WHERE b.showtime_id = $1 AND b.status = 'CONFIRMED'
	`

	rows, err := p.db.Query(ctx, query, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seatIDs := make([]uuid.UUID, 0)

	for rows.Next() {
		var seatID uuid.UUID

		err = rows.Scan(&seatID)
		if err != nil {
			return nil, err
		}

		seatIDs = append(seatIDs, seatID)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seatIDs, nil
}

func retrieveBookingSeats(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) ([]domain.BookingSeat, error) {
	rows, err := tx.Query(
		ctx,
		`SELECT booking_id, showtime_id, seat_id, price_cents FROM booking_seats WHERE booking_id = $1`,
		bookingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookingSeats(rows)
}

func (p *PostgresBookingRepository) retrieveBookingSeatsFromPool(
	ctx context.Context,
	bookingID uuid.UUID) ([]domain.BookingSeat, error) {

	rows, err := p.db.Query(
		ctx,
		`SELECT booking_id, showtime_id, seat_id, price_cents FROM booking_seats WHERE booking_id = $1`,
		bookingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookingSeats(rows)
}

func scanBookingSeats(rows pgx.Rows) ([]domain.BookingSeat, error) {
	seats := make([]domain.BookingSeat, 0)

	for rows.Next() {
		var seat domain.BookingSeat

		err := rows.Scan(&seat.BookingID, &seat.ShowtimeID, &seat.SeatID, &seat.PriceCents)
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
