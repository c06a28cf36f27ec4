package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SeatLock is a time-boxed soft reservation of a seat for a showtime.
// At most one non-expired lock exists per (showtime, seat); only the
// holder may refresh it. Locks are advisory: ownership is decided by
// confirmed bookings, not by the lock table.
type SeatLock struct {
	ShowtimeID uuid.UUID
	SeatID     uuid.UUID
	UserID     uuid.UUID
	ExpiresAt  time.Time
}

type ActiveLocks struct {
	LockedByOthers []uuid.UUID
	Mine           []uuid.UUID
}

type LockRepository interface {
	// ListActive purges expired locks, then reports the showtime's
	// remaining locks split by holder.
	ListActive(ctx context.Context, showtimeID, userID uuid.UUID) (*ActiveLocks, error)

	// Lock inserts or refreshes one lock per seat with expiry now+ttl.
	// It fails with ErrSeatsAlreadyLocked when any seat is held by a
	// different user and with ErrSeatsAlreadyBooked when any seat is
	// already part of a confirmed booking. All-or-nothing.
	Lock(ctx context.Context, showtimeID, userID uuid.UUID, seatIDs []uuid.UUID, ttl time.Duration) (time.Time, error)

	// Release deletes only locks held by userID and returns the subset
	// actually removed. Releasing a foreign or absent lock is not an
	// error.
	Release(ctx context.Context, showtimeID, userID uuid.UUID, seatIDs []uuid.UUID) ([]uuid.UUID, error)
}
