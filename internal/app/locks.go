package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ticketnest/booking-engine/api"
	"github.com/ticketnest/booking-engine/internal/domain"
)

func (app *Application) GetActiveLocks(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readUUIDParam(r, "showtimeID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)

	locks, err := app.lockRepo.ListActive(r.Context(), showtimeID, userID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ActiveLocksResponse{
		LockedByOthers: toStrings(locks.LockedByOthers),
		Mine:           toStrings(locks.Mine),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) LockSeats(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showtimeID, err := app.readUUIDParam(r, "showtimeID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.LockSeatsRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
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
		logger.Warn("lock request references unknown or inactive seats", "requested_seats", input.SeatIdList)
		app.notFoundResponseWithErr(w, r, fmt.Errorf("one or more seats do not exist for this showtime"))
		return
	}

	userID := app.contextGetUserId(r)

	expiresAt, err := app.lockRepo.Lock(r.Context(), showtimeID, userID, seatIDs, app.config.Booking.LockTTL)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSeatsAlreadyLocked), errors.Is(err, domain.ErrSeatsAlreadyBooked):
			logger.Warn("seat lock conflict", "showtime_id", showtimeID, "error", err)
			app.metrics.lockConflicts.Add(r.Context(), 1)
			app.conflictResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.metrics.locksAcquired.Add(r.Context(), int64(len(seatIDs)))
	app.publishSeatEvent(r, domain.SeatEventLocks, showtimeID, seatIDs)

	resp := api.LockSeatsResponse{
		SeatIds:   input.SeatIdList,
		ExpiresAt: expiresAt,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ReleaseSeats(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readUUIDParam(r, "showtimeID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.ReleaseSeatsRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	seatIDs, err := toUUIDs(input.SeatIdList)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)

	released, err := app.lockRepo.Release(r.Context(), showtimeID, userID, seatIDs)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.publishSeatEvent(r, domain.SeatEventUnlocks, showtimeID, released)

	resp := api.ReleaseSeatsResponse{
		SeatIds: toStrings(released),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
