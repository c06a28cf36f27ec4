package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/ticketnest/booking-engine/internal/domain"
)

type MockLockRepo struct {
	mock.Mock
	domain.LockRepository
}

func (m *MockLockRepo) ListActive(ctx context.Context, showtimeID, userID uuid.UUID) (*domain.ActiveLocks, error) {
	args := m.Called(ctx, showtimeID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ActiveLocks), args.Error(1)
}

func (m *MockLockRepo) Lock(
	ctx context.Context,
	showtimeID,
	userID uuid.UUID,
	seatIDs []uuid.UUID,
	ttl time.Duration) (time.Time, error) {

	args := m.Called(ctx, showtimeID, userID, seatIDs, ttl)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockLockRepo) Release(
	ctx context.Context,
	showtimeID,
	userID uuid.UUID,
	seatIDs []uuid.UUID) ([]uuid.UUID, error) {

	args := m.Called(ctx, showtimeID, userID, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}
