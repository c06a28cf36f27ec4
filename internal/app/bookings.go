package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ticketnest/booking-engine/api"
	"github.com/ticketnest/booking-engine/internal/domain"
)

func (app *Application) InitiateBooking(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateBookingRequest

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

	showtimeID, err := uuid.Parse(input.ShowtimeId)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid showtime ID format %s", input.ShowtimeId))
		return
	}

	seatIDs, err := toUUIDs(input.SeatIdList)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	seats, err := app.seatRepo.GetActiveSeatsByShowtimeAndIds(r.Context(), showtimeID, seatIDs)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if len(seats) != len(seatIDs) {
		logger.Warn("booking request references unknown or inactive seats", "requested_seats", input.SeatIdList)
		app.notFoundResponseWithErr(w, r, fmt.Errorf("one or more seats do not exist for this showtime"))
		return
	}

	userID := app.contextGetUserId(r)

	booking, err := app.bookingRepo.Initiate(r.Context(), domain.InitiateBookingParams{
		UserID:     userID,
		ShowtimeID: showtimeID,
		SeatIDs:    seatIDs,
		LockTTL:    app.config.Booking.LockTTL,
		PendingTTL: app.config.Booking.PendingTTL,
	})

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSeatsAlreadyLocked), errors.Is(err, domain.ErrSeatsAlreadyBooked):
			logger.Warn("booking initiation conflict", "showtime_id", showtimeID, "error", err)
			app.conflictResponse(w, r, err)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithErr(w, r, fmt.Errorf("showtime not found"))
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	logger.Info(
		"booking initiated",
		"booking_id", booking.ID,
		"showtime_id", showtimeID,
		"seat_count", len(seatIDs),
		"total_amount_cents", booking.TotalAmountCents,
	)

	app.metrics.bookingsCreated.Add(r.Context(), 1)

	// Initiation claims or refreshes the user's locks, so viewers see
	// the seats held even if the user skipped the lock step.
	app.publishSeatEvent(r, domain.SeatEventLocks, showtimeID, seatIDs)

	resp := api.BookingResponse{
		Booking: toApiBooking(booking),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := app.readUUIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := app.bookingRepo.GetById(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	// A booking is visible to its owner only; anyone else learns
	// nothing, not even that it exists.
	if booking.UserID != app.contextGetUserId(r) {
		app.notFoundResponse(w, r)
		return
	}

	resp := api.BookingResponse{
		Booking: toApiBooking(booking),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingsOfUser(w http.ResponseWriter, r *http.Request) {
	userID := app.contextGetUserId(r)

	bookings, err := app.bookingRepo.GetBookingsByUserId(r.Context(), userID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	apiBookings := make([]api.Booking, len(bookings))
	for i := range bookings {
		apiBookings[i] = toApiBooking(&bookings[i])
	}

	resp := api.UserBookingsResponse{
		Bookings: apiBookings,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := app.readUUIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := app.bookingRepo.GetById(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if booking.UserID != app.contextGetUserId(r) {
		app.notFoundResponse(w, r)
		return
	}

	confirmed, err := app.finalizeBooking(r, booking.ID, app.contextGetUserEmail(r))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSeatsAlreadyBooked):
			app.conflictResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := api.BookingResponse{
		Booking: toApiBooking(confirmed),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookedSeats(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readUUIDParam(r, "showtimeID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	seatIDs, err := app.bookingRepo.GetBookedSeatIdsByShowtimeId(r.Context(), showtimeID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.BookedSeatsResponse{
		SeatIds: toStrings(seatIDs),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// finalizeBooking runs the confirmation step shared by the direct
// trigger and webhook reconciliation. Confirm is idempotent and
// reports whether this call performed the transition, so duplicate
// triggers settle on the original code and QR payload and the
// broadcast and email fire exactly once.
func (app *Application) finalizeBooking(
	r *http.Request,
	bookingID uuid.UUID,
	recipientEmail string) (*domain.Booking, error) {

	booking, transitioned, err := app.bookingRepo.Confirm(r.Context(), bookingID)
	if err != nil {
		return nil, err
	}

	if !transitioned {
		return booking, nil
	}

	app.metrics.bookingsConfirmed.Add(r.Context(), 1)

	seatIDs := make([]uuid.UUID, len(booking.Seats))
	for i, seat := range booking.Seats {
		seatIDs[i] = seat.SeatID
	}

	app.publishSeatEvent(r, domain.SeatEventBooked, booking.ShowtimeID, seatIDs)

	if recipientEmail != "" {
		app.sendConfirmationEmail(r, recipientEmail, booking)
	}

	return booking, nil
}

func (app *Application) sendConfirmationEmail(r *http.Request, recipient string, booking *domain.Booking) {
	logger := app.contextGetLogger(r)

	showtime, err := app.showtimeRepo.GetById(r.Context(), booking.ShowtimeID)
	if err != nil {
		logger.Error("failed to load showtime for confirmation email", "error", err)
		return
	}

	data := map[string]any{
		"BookingCode": *booking.BookingCode,
		"QRPayload":   *booking.QRPayload,
		"MovieTitle":  showtime.MovieTitle,
		"HallName":    showtime.HallName,
		"Showtime":    showtime.StartsAt.Format("Jan 2, 2006 15:04"),
		"SeatCount":   len(booking.Seats),
		"Total":       decimal.NewFromInt(booking.TotalAmountCents).Div(decimal.NewFromInt(100)).StringFixed(2),
	}

	app.background(func() {
		err := app.mailer.Send(recipient, "booking_confirmation.tmpl", data)
		if err != nil {
			app.logger.Error("failed to send confirmation email", "booking_id", booking.ID, "error", err)
		}
	})
}

func toApiBooking(booking *domain.Booking) api.Booking {
	seatIDs := make([]string, len(booking.Seats))
	for i, seat := range booking.Seats {
		seatIDs[i] = seat.SeatID.String()
	}

	return api.Booking{
		Id:               booking.ID.String(),
		ShowtimeId:       booking.ShowtimeID.String(),
		Status:           string(booking.Status),
		TotalAmountCents: booking.TotalAmountCents,
		PaymentStatus:    string(booking.PaymentStatus),
		BookingCode:      booking.BookingCode,
		QrPayload:        booking.QRPayload,
		SeatIds:          seatIDs,
		CreatedAt:        booking.CreatedAt,
	}
}
