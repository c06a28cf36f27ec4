package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/ticketnest/booking-engine/api"
	"github.com/ticketnest/booking-engine/internal/domain"
)

func (app *Application) CreateCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	var input api.CheckoutSessionRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	bookingID, err := uuid.Parse(input.BookingId)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid booking ID format %s", input.BookingId))
		return
	}

	booking, err := app.bookingRepo.GetById(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithErr(w, r, fmt.Errorf("booking not found"))
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if booking.UserID != app.contextGetUserId(r) {
		app.forbiddenResponse(w, r)
		return
	}

	showtime, err := app.showtimeRepo.GetById(r.Context(), booking.ShowtimeID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	checkoutSession, err := app.paymentProvider.CreateCheckoutSession(
		app.contextGetUserEmail(r),
		booking,
		showtime,
	)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// The amount is always taken from the booking row; the request
	// never carries a price.
	payment := &domain.Payment{
		BookingID:   booking.ID,
		Provider:    input.Provider,
		AmountCents: booking.TotalAmountCents,
		Currency:    "USD",
		Status:      domain.PaymentStatusPending,
		ProviderRef: checkoutSession.ID,
	}

	err = app.paymentRepo.Create(r.Context(), payment)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.CheckoutSessionResponse{
		Payment:     toApiPayment(payment),
		RedirectUrl: checkoutSession.URL,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// StripeWebhookHandler reconciles provider callbacks into booking
// state. The signature check runs before any mutation: a request that
// fails authentication leaves no trace.
func (app *Application) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	if app.config.Stripe.WebhookSecret == "" {
		app.badRequestResponse(w, r, fmt.Errorf("stripe webhook is not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 65536)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to read webhook payload"))
		return
	}

	signature := r.Header.Get("Stripe-Signature")

	event, err := webhook.ConstructEvent(payload, signature, app.config.Stripe.WebhookSecret)
	if err != nil {
		logger.Warn("webhook signature verification failed", "error", err)
		app.badRequestResponse(w, r, fmt.Errorf("invalid webhook signature"))
		return
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		app.writeJSON(w, http.StatusOK, map[string]bool{"received": true}, nil)
		return
	}

	var checkoutSession stripe.CheckoutSession

	err = json.Unmarshal(event.Data.Raw, &checkoutSession)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("malformed checkout session payload"))
		return
	}

	payment, err := app.paymentRepo.MarkPaid(r.Context(), checkoutSession.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if payment == nil {
		logger.Warn("webhook references unknown payment", "provider_ref", checkoutSession.ID)
		app.notFoundResponseWithErr(w, r, fmt.Errorf("payment not found"))
		return
	}

	app.metrics.paymentsReconciled.Add(r.Context(), 1)

	var recipientEmail string
	if checkoutSession.CustomerDetails != nil {
		recipientEmail = checkoutSession.CustomerDetails.Email
	}

	confirmed, err := app.finalizeBooking(r, payment.BookingID, recipientEmail)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	logger.Info(
		"payment reconciled",
		"payment_id", payment.ID,
		"booking_id", confirmed.ID,
		"provider_ref", payment.ProviderRef,
	)

	app.writeJSON(w, http.StatusOK, map[string]bool{"received": true}, nil)
}

func toApiPayment(payment *domain.Payment) api.Payment {
	return api.Payment{
		Id:          payment.ID.String(),
		BookingId:   payment.BookingID.String(),
		Provider:    payment.Provider,
		AmountCents: payment.AmountCents,
		Currency:    payment.Currency,
		Status:      string(payment.Status),
		ProviderRef: payment.ProviderRef,
		CreatedAt:   payment.CreatedAt,
	}
}
