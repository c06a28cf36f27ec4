package domain

import (
	"context"

	"github.com/google/uuid"
)

// Seat is the static catalog identity of a hall seat. It is owned by
// catalog management and never mutated by this engine.
type Seat struct {
	ID         uuid.UUID
	HallID     uuid.UUID
	RowLabel   string
	SeatNumber int
	SeatType   string
	IsActive   bool
}

type SeatRepository interface {
	GetSeatsByShowtime(ctx context.Context, showtimeID uuid.UUID) ([]Seat, error)
	GetActiveSeatsByShowtimeAndIds(ctx context.Context, showtimeID uuid.UUID, seatIDs []uuid.UUID) ([]Seat, error)
}
