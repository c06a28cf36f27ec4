// Package api defines the wire types of the booking engine's HTTP
// surface. Collaborators (auth, catalog, UI) program against these.
package api

import "time"

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

// SeatStatus is the seat-map overlay state of a single seat.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatLocked    SeatStatus = "locked"
	SeatMine      SeatStatus = "mine"
	SeatBooked    SeatStatus = "booked"
)

type SeatMapSeat struct {
	Id         string     `json:"id"`
	RowLabel   string     `json:"rowLabel"`
	SeatNumber int        `json:"seatNumber"`
	SeatType   string     `json:"seatType"`
	Status     SeatStatus `json:"status"`
}

type SeatMapResponse struct {
	ShowtimeId     string        `json:"showtimeId"`
	MovieTitle     string        `json:"movieTitle"`
	HallName       string        `json:"hallName"`
	StartsAt       time.Time     `json:"startsAt"`
	BasePriceCents int64         `json:"basePriceCents"`
	Seats          []SeatMapSeat `json:"seats"`
}

type LockSeatsRequest struct {
	SeatIdList []string `json:"seatIds" validate:"required,min=1,max=10,unique,dive,uuid"`
}

type LockSeatsResponse struct {
	SeatIds   []string  `json:"seatIds"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ReleaseSeatsRequest struct {
	SeatIdList []string `json:"seatIds" validate:"required,min=1,max=10,unique,dive,uuid"`
}

type ReleaseSeatsResponse struct {
	SeatIds []string `json:"seatIds"`
}

type ActiveLocksResponse struct {
	LockedByOthers []string `json:"lockedByOthers"`
	Mine           []string `json:"mine"`
}

type BookedSeatsResponse struct {
	SeatIds []string `json:"seatIds"`
}

type CreateBookingRequest struct {
	ShowtimeId string   `json:"showtimeId" validate:"required,uuid"`
	SeatIdList []string `json:"seatIds" validate:"required,min=1,max=10,unique,dive,uuid"`
}

type Booking struct {
	Id               string    `json:"id"`
	ShowtimeId       string    `json:"showtimeId"`
	Status           string    `json:"status"`
	TotalAmountCents int64     `json:"totalAmountCents"`
	PaymentStatus    string    `json:"paymentStatus"`
	BookingCode      *string   `json:"bookingCode,omitempty"`
	QrPayload        *string   `json:"qrPayload,omitempty"`
	SeatIds          []string  `json:"seatIds,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

type BookingResponse struct {
	Booking Booking `json:"booking"`
}

type UserBookingsResponse struct {
	Bookings []Booking `json:"bookings"`
}

type CheckoutSessionRequest struct {
	BookingId string `json:"bookingId" validate:"required,uuid"`
	Provider  string `json:"provider" validate:"required,oneof=stripe paypal"`
}

type Payment struct {
	Id          string    `json:"id"`
	BookingId   string    `json:"bookingId"`
	Provider    string    `json:"provider"`
	AmountCents int64     `json:"amountCents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	ProviderRef string    `json:"providerRef"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CheckoutSessionResponse struct {
	Payment     Payment `json:"payment"`
	RedirectUrl string  `json:"redirectUrl"`
}

// SeatEventPayload is the body of every real-time event delivered to
// seat-map viewers.
type SeatEventPayload struct {
	SeatIds []string `json:"seatIds"`
}
