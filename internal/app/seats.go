package app

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/ticketnest/booking-engine/api"
	"github.com/ticketnest/booking-engine/internal/domain"
)

// GetSeatMapByShowtime overlays the authoritative sold set and the
// current locks over the hall's seat catalog. This is the read every
// broadcast event can be reproduced from.
func (app *Application) GetSeatMapByShowtime(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showtimeID, err := app.readUUIDParam(r, "showtimeID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	showtime, err := app.showtimeRepo.GetById(r.Context(), showtimeID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	seats, err := app.seatRepo.GetSeatsByShowtime(r.Context(), showtimeID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if len(seats) == 0 {
		logger.Warn("seat map not found for showtime", "showtime_id", showtimeID)
		app.notFoundResponse(w, r)
		return
	}

	bookedSeatIDs, err := app.bookingRepo.GetBookedSeatIdsByShowtimeId(r.Context(), showtimeID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	locks, err := app.lockRepo.ListActive(r.Context(), showtimeID, app.sessionUserId(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := toSeatMapResponse(showtime, seats, bookedSeatIDs, locks)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(
	showtime *domain.Showtime,
	seats []domain.Seat,
	bookedSeatIDs []uuid.UUID,
	locks *domain.ActiveLocks) api.SeatMapResponse {

	booked := make(map[uuid.UUID]bool, len(bookedSeatIDs))
	for _, id := range bookedSeatIDs {
		booked[id] = true
	}

	lockedByOthers := make(map[uuid.UUID]bool, len(locks.LockedByOthers))
	for _, id := range locks.LockedByOthers {
		lockedByOthers[id] = true
	}

	mine := make(map[uuid.UUID]bool, len(locks.Mine))
	for _, id := range locks.Mine {
		mine[id] = true
	}

	seatMapSeats := make([]api.SeatMapSeat, len(seats))

	for i, seat := range seats {
		status := api.SeatAvailable

		switch {
		case booked[seat.ID]:
			status = api.SeatBooked
		case mine[seat.ID]:
			status = api.SeatMine
		case lockedByOthers[seat.ID]:
			status = api.SeatLocked
		}

		seatMapSeats[i] = api.SeatMapSeat{
			Id:         seat.ID.String(),
			RowLabel:   seat.RowLabel,
			SeatNumber: seat.SeatNumber,
			SeatType:   seat.SeatType,
			Status:     status,
		}
	}

	return api.SeatMapResponse{
		ShowtimeId:     showtime.ID.String(),
		MovieTitle:     showtime.MovieTitle,
		HallName:       showtime.HallName,
		StartsAt:       showtime.StartsAt,
		BasePriceCents: showtime.BasePriceCents,
		Seats:          seatMapSeats,
	}
}
