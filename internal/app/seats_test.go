package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/ticketnest/booking-engine/api"
	"github.com/ticketnest/booking-engine/internal/domain"
	"github.com/ticketnest/booking-engine/internal/mocks"
)

type SeatMapTestSuite struct {
	suite.Suite
	app          *Application
	seatRepo     *mocks.MockSeatRepo
	showtimeRepo *mocks.MockShowtimeRepo
	bookingRepo  *mocks.MockBookingRepo
	lockRepo     *mocks.MockLockRepo

	showtimeID uuid.UUID
	userID     uuid.UUID
	startsAt   time.Time
}

func (s *SeatMapTestSuite) SetupTest() {
	s.seatRepo = new(mocks.MockSeatRepo)
	s.showtimeRepo = new(mocks.MockShowtimeRepo)
	s.bookingRepo = new(mocks.MockBookingRepo)
	s.lockRepo = new(mocks.MockLockRepo)

	s.app = newTestApplication(func(a *Application) {
		a.seatRepo = s.seatRepo
		a.showtimeRepo = s.showtimeRepo
		a.bookingRepo = s.bookingRepo
		a.lockRepo = s.lockRepo
	})

	s.showtimeID = uuid.New()
	s.userID = uuid.New()
	s.startsAt = time.Now().Add(24 * time.Hour).Truncate(time.Second).UTC()
}

func TestSeatMapSuite(t *testing.T) {
	suite.Run(t, new(SeatMapTestSuite))
}

func (s *SeatMapTestSuite) TestGetSeatMapByShowtime() {
	seatA1 := uuid.New()
	seatA2 := uuid.New()
	seatA3 := uuid.New()
	seatA4 := uuid.New()

	showtime := &domain.Showtime{
		ID:             s.showtimeID,
		MovieTitle:     "Night Train",
		HallName:       "Hall 1",
		StartsAt:       s.startsAt,
		BasePriceCents: 1400,
	}

	seats := []domain.Seat{
		{ID: seatA1, RowLabel: "A", SeatNumber: 1, SeatType: "STANDARD", IsActive: true},
		{ID: seatA2, RowLabel: "A", SeatNumber: 2, SeatType: "STANDARD", IsActive: true},
		{ID: seatA3, RowLabel: "A", SeatNumber: 3, SeatType: "VIP", IsActive: true},
		{ID: seatA4, RowLabel: "A", SeatNumber: 4, SeatType: "VIP", IsActive: true},
	}

	s.Run("should fail when the showtime does not exist", func() {
		s.showtimeRepo.On("GetById", mock.Anything, s.showtimeID).
			Return(nil, domain.ErrRecordNotFound).Once()

		w, r := executeRequest(s.T(), http.MethodGet, "/showtimes/"+s.showtimeID.String()+"/seats", nil)
		r = withURLParam(r, "showtimeID", s.showtimeID.String())
		r = withSession(s.T(), s.app, r)

		s.app.GetSeatMapByShowtime(w, r)

		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("should fail when the hall has no seats", func() {
		s.showtimeRepo.On("GetById", mock.Anything, s.showtimeID).Return(showtime, nil).Once()
		s.seatRepo.On("GetSeatsByShowtime", mock.Anything, s.showtimeID).
			Return([]domain.Seat{}, nil).Once()

		w, r := executeRequest(s.T(), http.MethodGet, "/showtimes/"+s.showtimeID.String()+"/seats", nil)
		r = withURLParam(r, "showtimeID", s.showtimeID.String())
		r = withSession(s.T(), s.app, r)

		s.app.GetSeatMapByShowtime(w, r)

		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("should fail when the lock table errors", func() {
		s.showtimeRepo.On("GetById", mock.Anything, s.showtimeID).Return(showtime, nil).Once()
		s.seatRepo.On("GetSeatsByShowtime", mock.Anything, s.showtimeID).Return(seats, nil).Once()
		s.bookingRepo.On("GetBookedSeatIdsByShowtimeId", mock.Anything, s.showtimeID).
			Return([]uuid.UUID{}, nil).Once()
		s.lockRepo.On("ListActive", mock.Anything, s.showtimeID, uuid.Nil).
			Return(nil, fmt.Errorf("database error")).Once()

		w, r := executeRequest(s.T(), http.MethodGet, "/showtimes/"+s.showtimeID.String()+"/seats", nil)
		r = withURLParam(r, "showtimeID", s.showtimeID.String())
		r = withSession(s.T(), s.app, r)

		s.app.GetSeatMapByShowtime(w, r)

		s.Equal(http.StatusInternalServerError, w.Code)
	})

	s.Run("should overlay booked and locked seats for an authenticated viewer", func() {
		s.showtimeRepo.On("GetById", mock.Anything, s.showtimeID).Return(showtime, nil).Once()
		s.seatRepo.On("GetSeatsByShowtime", mock.Anything, s.showtimeID).Return(seats, nil).Once()
		s.bookingRepo.On("GetBookedSeatIdsByShowtimeId", mock.Anything, s.showtimeID).
			Return([]uuid.UUID{seatA1}, nil).Once()
		s.lockRepo.On("ListActive", mock.Anything, s.showtimeID, s.userID).
			Return(&domain.ActiveLocks{
				LockedByOthers: []uuid.UUID{seatA2},
				Mine:           []uuid.UUID{seatA3},
			}, nil).Once()

		w, r := executeRequest(s.T(), http.MethodGet, "/showtimes/"+s.showtimeID.String()+"/seats", nil)
		r = withURLParam(r, "showtimeID", s.showtimeID.String())
		r = withSession(s.T(), s.app, r)
		s.app.sessionManager.Put(r.Context(), SessionKeyUserId.String(), s.userID.String())

		s.app.GetSeatMapByShowtime(w, r)

		s.Equal(http.StatusOK, w.Code)

		var resp api.SeatMapResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))

		want := api.SeatMapResponse{
			ShowtimeId:     s.showtimeID.String(),
			MovieTitle:     "Night Train",
			HallName:       "Hall 1",
			StartsAt:       s.startsAt,
			BasePriceCents: 1400,
			Seats: []api.SeatMapSeat{
				{Id: seatA1.String(), RowLabel: "A", SeatNumber: 1, SeatType: "STANDARD", Status: api.SeatBooked},
				{Id: seatA2.String(), RowLabel: "A", SeatNumber: 2, SeatType: "STANDARD", Status: api.SeatLocked},
				{Id: seatA3.String(), RowLabel: "A", SeatNumber: 3, SeatType: "VIP", Status: api.SeatMine},
				{Id: seatA4.String(), RowLabel: "A", SeatNumber: 4, SeatType: "VIP", Status: api.SeatAvailable},
			},
		}

		if diff := cmp.Diff(want, resp); diff != "" {
			s.T().Errorf("seat map mismatch (-want +got):\n%s", diff)
		}

		s.seatRepo.AssertExpectations(s.T())
		s.lockRepo.AssertExpectations(s.T())
	})
}
