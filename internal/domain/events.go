package domain

import (
	"context"

	"github.com/google/uuid"
)

type SeatEventType string

const (
	SeatEventLocks   SeatEventType = "seat_locks"
	SeatEventUnlocks SeatEventType = "seat_unlocks"
	SeatEventBooked  SeatEventType = "seat_booked"
)

// SeatEvent announces a seat-state change to viewers of a showtime.
// Delivery is best-effort; every event can be reproduced by reading
// the lock table and booking ledger directly.
type SeatEvent struct {
	Type       SeatEventType `json:"type"`
	ShowtimeID uuid.UUID     `json:"showtimeId"`
	SeatIDs    []uuid.UUID   `json:"seatIds"`
}

// Broadcaster fans SeatEvents out to subscribers of a showtime. It has
// no authority over correctness and keeps no history.
type Broadcaster interface {
	Publish(ctx context.Context, event SeatEvent) error

	// Subscribe returns a channel of events for the showtime and a
	// cancel function that releases the subscription.
	Subscribe(ctx context.Context, showtimeID uuid.UUID) (<-chan SeatEvent, func(), error)

	Close() error
}
