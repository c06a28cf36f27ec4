package domain

// CheckoutSession is the provider-hosted payment page created for a
// booking. ID doubles as the provider reference used by webhook
// reconciliation.
type CheckoutSession struct {
	ID  string
	URL string
}

type PaymentProvider interface {
	CreateCheckoutSession(customerEmail string, booking *Booking, showtime *Showtime) (*CheckoutSession, error)
}
