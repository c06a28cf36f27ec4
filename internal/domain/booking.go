package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
)

type PaymentState string

const (
	PaymentStateUnpaid PaymentState = "UNPAID"
	PaymentStatePaid   PaymentState = "PAID"
)

// Booking is the durable record of a user's claim on a set of seats
// for a showtime. Only CONFIRMED bookings count as sold seats.
type Booking struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	ShowtimeID       uuid.UUID
	Status           BookingStatus
	TotalAmountCents int64
	PaymentStatus    PaymentState
	BookingCode      *string
	QRPayload        *string
	Seats            []BookingSeat
	CreatedAt        time.Time
}

type BookingSeat struct {
	BookingID  uuid.UUID
	ShowtimeID uuid.UUID
	SeatID     uuid.UUID
	PriceCents int64
}

type InitiateBookingParams struct {
	UserID     uuid.UUID
	ShowtimeID uuid.UUID
	SeatIDs    []uuid.UUID
	LockTTL    time.Duration

	// PendingTTL bounds how long an unpaid PENDING booking keeps its
	// seats. Zero disables expiry.
	PendingTTL time.Duration
}

type BookingRepository interface {
	// Initiate atomically re-validates seat locks and confirmed seats,
	// claims or refreshes locks for the user, and creates a PENDING
	// booking with one line item per seat at the showtime's base price.
	Initiate(ctx context.Context, params InitiateBookingParams) (*Booking, error)

	// Confirm transitions a booking to CONFIRMED, assigns its code and
	// QR payload, and deletes every seat lock of the showtime. It is
	// idempotent: confirming a CONFIRMED booking returns it unchanged.
	// The bool reports whether this call performed the transition, so
	// callers fire one-shot side effects exactly once even when
	// duplicate triggers race.
	Confirm(ctx context.Context, bookingID uuid.UUID) (*Booking, bool, error)

	GetById(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBookingsByUserId(ctx context.Context, userID uuid.UUID) ([]Booking, error)
	GetBookedSeatIdsByShowtimeId(ctx context.Context, showtimeID uuid.UUID) ([]uuid.UUID, error)
}

// NewBookingCode derives a short opaque code from a random identifier.
func NewBookingCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(raw[:12])
}

// NewQRPayload embeds the booking identity so a scanned ticket can be
// matched back to its record.
func NewQRPayload(bookingID uuid.UUID, code string) string {
	return fmt.Sprintf("TICKETNEST:%s:%s", bookingID, code)
}
