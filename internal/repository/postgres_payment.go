package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ticketnest/booking-engine/internal/domain"
)

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

func (p *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (booking_id, provider, amount_cents, currency, status, provider_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	return p.db.QueryRow(
		ctx,
		query,
		payment.BookingID,
		payment.Provider,
		payment.AmountCents,
		payment.Currency,
		payment.Status,
		payment.ProviderRef,
	).Scan(&payment.ID, &payment.CreatedAt)
}

func (p *PostgresPaymentRepository) MarkPaid(ctx context.Context, providerRef string) (*domain.Payment, error) {
	query := `
		UPDATE payments
		SET status = 'PAID', updated_at = NOW()
		WHERE provider_ref = $1
		RETURNING id, booking_id, provider, amount_cents, currency, status, provider_ref, created_at, updated_at
	`

	payment := &domain.Payment{}

	err := p.db.QueryRow(ctx, query, providerRef).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Provider,
		&payment.AmountCents,
		&payment.Currency,
		&payment.Status,
		&payment.ProviderRef,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err != nil {
		// An unknown reference is an expected outcome, not a fault:
		// callers decide how to report it.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return payment, nil
}

func (p *PostgresPaymentRepository) GetByBookingId(ctx context.Context, bookingID uuid.UUID) (*domain.Payment, error) {
	query := `
		SELECT id, booking_id, provider, amount_cents, currency, status, provider_ref, created_at, updated_at
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	payment := &domain.Payment{}

	err := p.db.QueryRow(ctx, query, bookingID).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Provider,
		&payment.AmountCents,
		&payment.Currency,
		&payment.Status,
		&payment.ProviderRef,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return payment, nil
}
