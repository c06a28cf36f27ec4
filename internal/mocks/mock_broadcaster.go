package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/ticketnest/booking-engine/internal/domain"
)

type MockBroadcaster struct {
	mock.Mock
	domain.Broadcaster
}

func (m *MockBroadcaster) Publish(ctx context.Context, event domain.SeatEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockBroadcaster) Subscribe(
	ctx context.Context,
	showtimeID uuid.UUID) (<-chan domain.SeatEvent, func(), error) {

	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(<-chan domain.SeatEvent), args.Get(1).(func()), args.Error(2)
}

func (m *MockBroadcaster) Close() error {
	args := m.Called()
	return args.Error(0)
}
