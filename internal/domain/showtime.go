package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Showtime struct {
	ID             uuid.UUID
	MovieID        uuid.UUID
	HallID         uuid.UUID
	MovieTitle     string
	HallName       string
	StartsAt       time.Time
	BasePriceCents int64
}

type ShowtimeRepository interface {
	GetById(ctx context.Context, id uuid.UUID) (*Showtime, error)
}
