package payment

import (
	"github.com/ticketnest/booking-engine/internal/domain"
)

type MockPaymentProvider struct {
}

func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{}
}

func (m *MockPaymentProvider) CreateCheckoutSession(
	customerEmail string,
	booking *domain.Booking,
	showtime *domain.Showtime) (*domain.CheckoutSession, error) {

	return &domain.CheckoutSession{
		ID:  "cs_test_" + booking.ID.String(),
		URL: "https://checkout.example.com/" + booking.ID.String(),
	}, nil
}
