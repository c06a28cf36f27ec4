package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/ticketnest/booking-engine/internal/domain"
)

type MockPaymentProvider struct {
	mock.Mock
	domain.PaymentProvider
}

func (m *MockPaymentProvider) CreateCheckoutSession(
	customerEmail string,
	booking *domain.Booking,
	showtime *domain.Showtime) (*domain.CheckoutSession, error) {

	args := m.Called(customerEmail, booking, showtime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSession), args.Error(1)
}
