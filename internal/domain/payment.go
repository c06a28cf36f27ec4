package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// Payment links a booking to an external payment attempt. ProviderRef
// is the provider's correlation id and is unique per payment; webhook
// reconciliation keys strictly on it.
type Payment struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	Provider    string
	AmountCents int64
	Currency    string
	Status      PaymentStatus
	ProviderRef string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error

	// MarkPaid transitions the payment matching providerRef to PAID.
	// It returns (nil, nil) when no payment matches, so callers can
	// tell an unknown reference apart from a processing fault.
	MarkPaid(ctx context.Context, providerRef string) (*Payment, error)

	GetByBookingId(ctx context.Context, bookingID uuid.UUID) (*Payment, error)
}
