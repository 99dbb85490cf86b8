package app

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReservationsTestSuite struct {
	suite.Suite
	app   *Application
	mocks *testMocks
}

func (s *ReservationsTestSuite) SetupTest() {
	s.app, s.mocks = newTestApplication()
}

func TestReservationsSuite(t *testing.T) {
	suite.Run(t, new(ReservationsTestSuite))
}

func (s *ReservationsTestSuite) bookableShowtime() *domain.Showtime {
	return &domain.Showtime{
		ID:             3,
		RoomID:         2,
		StartTime:      testNow.Add(2 * time.Hour),
		BasePrice:      decimal.NewFromFloat(30),
		Status:         domain.ShowtimeScheduled,
		AvailableSeats: 40,
	}
}

func (s *ReservationsTestSuite) TestCreateReservationHandler() {
	validBody := map[string]any{
		"customerId": 7,
		"showtimeId": 3,
		"seats": []map[string]any{
			{"row": "B", "number": 5, "fare": "Adult"},
		},
	}

	tests := []struct {
		name           string
		body           any
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:           "should fail when body is empty",
			body:           nil,
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "body must not be empty",
		},
		{
			name: "should fail when fare category is unknown",
			body: map[string]any{
				"customerId": 7,
				"showtimeId": 3,
				"seats":      []map[string]any{{"row": "B", "number": 5, "fare": "Senior"}},
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be one of Adult, Child, Accessible, Companion",
		},
		{
			name: "should fail when seat row is malformed",
			body: map[string]any{
				"customerId": 7,
				"showtimeId": 3,
				"seats":      []map[string]any{{"row": "b7", "number": 5, "fare": "Adult"}},
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be one or two uppercase letters",
		},
		{
			name: "should fail when more than three seats are requested",
			body: map[string]any{
				"customerId": 7,
				"showtimeId": 3,
				"seats": []map[string]any{
					{"row": "B", "number": 1, "fare": "Adult"},
					{"row": "B", "number": 2, "fare": "Adult"},
					{"row": "B", "number": 3, "fare": "Adult"},
					{"row": "B", "number": 4, "fare": "Adult"},
				},
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "should fail when the same seat is selected twice",
			body: map[string]any{
				"customerId": 7,
				"showtimeId": 3,
				"seats": []map[string]any{
					{"row": "B", "number": 5, "fare": "Adult"},
					{"row": "B", "number": 5, "fare": "Adult"},
				},
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must not contain duplicates",
		},
		{
			name: "should fail when the same seat is selected twice with different fares",
			body: map[string]any{
				"customerId": 7,
				"showtimeId": 3,
				"seats": []map[string]any{
					{"row": "B", "number": 5, "fare": "Adult"},
					{"row": "B", "number": 5, "fare": "Child"},
				},
			},
			setupMocks: func() {
				s.mocks.customerRepo.On("GetById", mock.Anything, 7).
					Return(&domain.Customer{ID: 7, Active: true}, nil)
				s.mocks.showtimeRepo.On("GetById", mock.Anything, 3).Return(s.bookableShowtime(), nil)
				s.mocks.showtimeRepo.On("AvailableSeatsForUpdate", mock.Anything, 3).Return(40, nil)
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: domain.ErrDuplicateSeats.Error(),
		},
		{
			name: "should return 404 when customer does not exist",
			body: validBody,
			setupMocks: func() {
				s.mocks.customerRepo.On("GetById", mock.Anything, 7).Return(nil, domain.ErrRecordNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "should return 409 when the seat is already held",
			body: validBody,
			setupMocks: func() {
				s.mocks.customerRepo.On("GetById", mock.Anything, 7).
					Return(&domain.Customer{ID: 7, Active: true}, nil)
				s.mocks.showtimeRepo.On("GetById", mock.Anything, 3).Return(s.bookableShowtime(), nil)
				s.mocks.showtimeRepo.On("AvailableSeatsForUpdate", mock.Anything, 3).Return(40, nil)
				s.mocks.seatRepo.On("GetByRoomAndLocations", mock.Anything, 2, mock.Anything).
					Return([]domain.Seat{
						{ID: 21, RoomID: 2, Row: "B", Number: 5, Type: domain.SeatTypeStandard, Status: domain.SeatHeld, Active: true},
					}, nil)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "should create a reservation with valid input",
			body: validBody,
			setupMocks: func() {
				s.mocks.customerRepo.On("GetById", mock.Anything, 7).
					Return(&domain.Customer{ID: 7, Active: true}, nil)
				s.mocks.showtimeRepo.On("GetById", mock.Anything, 3).Return(s.bookableShowtime(), nil)
				s.mocks.showtimeRepo.On("AvailableSeatsForUpdate", mock.Anything, 3).Return(40, nil)
				s.mocks.seatRepo.On("GetByRoomAndLocations", mock.Anything, 2, mock.Anything).
					Return([]domain.Seat{
						{ID: 21, RoomID: 2, Row: "B", Number: 5, Type: domain.SeatTypeStandard, Status: domain.SeatAvailable, Active: true},
					}, nil)
				s.mocks.fareRepo.On("GetByCategory", mock.Anything, domain.FareAdult).
					Return(&domain.Fare{ID: 1, Category: domain.FareAdult, BasePrice: decimal.NewFromFloat(25)}, nil)
				s.mocks.reservationRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
					reservation := args.Get(1).(*domain.Reservation)
					reservation.ID = 42
					reservation.Code = "RES-00042"
				}).Return(nil)
				s.mocks.seatRepo.On("UpdateStatus", mock.Anything, []int{21}, domain.SeatHeld).Return(nil)
				s.mocks.showtimeRepo.On("AdjustAvailableSeats", mock.Anything, 3, -1).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w := executeRequest(s.T(), s.app, http.MethodPost, "/reservations", tt.body)

			s.Equal(tt.wantStatus, w.Code)
			checkErrorResponse(s.T(), w, tt.wantStatus, tt.wantErrMessage)

			if tt.wantStatus == http.StatusCreated {
				var resp ReservationResponse
				s.NoError(json.NewDecoder(w.Body).Decode(&resp))
				s.Equal("RES-00042", resp.Code)
				s.Equal(string(domain.ReservationPending), resp.State)
				s.Equal(testNow.Add(domain.HoldTTL), resp.ExpiresAt)
			}
		})
	}
}

func (s *ReservationsTestSuite) TestGetReservationByCodeHandler() {
	s.Run("should return 404 for an unknown code", func() {
		s.SetupTest()

		s.mocks.reservationRepo.On("GetByCode", mock.Anything, "RES-99999").Return(nil, domain.ErrRecordNotFound)

		w := executeRequest(s.T(), s.app, http.MethodGet, "/reservations/RES-99999", nil)

		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("should return the reservation with its seats", func() {
		s.SetupTest()

		s.mocks.reservationRepo.On("GetByCode", mock.Anything, "RES-00042").Return(&domain.Reservation{
			ID:         42,
			Code:       "RES-00042",
			ShowtimeID: 3,
			State:      domain.ReservationPending,
			TotalPrice: decimal.NewFromFloat(25),
			ReservationSeat: []domain.ReservationSeat{
				{SeatID: 21, Location: "B5", SeatType: domain.SeatTypeStandard, UnitPrice: decimal.NewFromFloat(25)},
			},
		}, nil)

		w := executeRequest(s.T(), s.app, http.MethodGet, "/reservations/RES-00042", nil)

		s.Equal(http.StatusOK, w.Code)

		var resp ReservationResponse
		s.NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Equal("RES-00042", resp.Code)
		s.Len(resp.Seats, 1)
		s.Equal("B5", resp.Seats[0].Location)
	})
}

func (s *ReservationsTestSuite) TestConfirmReservationHandler() {
	pending := func() *domain.Reservation {
		return &domain.Reservation{
			ID:         42,
			Code:       "RES-00042",
			ShowtimeID: 3,
			State:      domain.ReservationPending,
			TotalPrice: decimal.NewFromFloat(25),
			ExpiresAt:  testNow.Add(10 * time.Minute),
			Version:    1,
		}
	}

	issuedTicket := &domain.Ticket{
		ID:              8,
		Code:            "BOL-0008",
		ReservationID:   42,
		ReservationCode: "RES-00042",
		CustomerName:    "Maria Lopez",
		CustomerEmail:   "maria@example.com",
		MovieTitle:      "The Last Reel",
		RoomName:        "Sala 1",
		TotalPrice:      decimal.NewFromFloat(25),
		PaymentMethod:   "Cash",
		SeatLocations:   []string{"B5 (Standard)"},
	}

	s.Run("should fail without an employee id", func() {
		s.SetupTest()

		w := executeRequest(s.T(), s.app, http.MethodPost, "/reservations/42/confirmation", map[string]any{})

		s.Equal(http.StatusUnprocessableEntity, w.Code)
	})

	s.Run("should return 409 when the hold expired", func() {
		s.SetupTest()

		expired := pending()
		expired.ExpiresAt = testNow.Add(-time.Minute)

		s.mocks.employeeRepo.On("GetById", mock.Anything, 9).
			Return(&domain.Employee{ID: 9, Role: domain.RoleTicketAgent, Active: true}, nil)
		s.mocks.reservationRepo.On("GetById", mock.Anything, 42).Return(expired, nil)

		w := executeRequest(s.T(), s.app, http.MethodPost, "/reservations/42/confirmation",
			map[string]any{"employeeId": 9})

		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("should confirm and email the receipt", func() {
		s.SetupTest()

		s.mocks.employeeRepo.On("GetById", mock.Anything, 9).
			Return(&domain.Employee{ID: 9, Role: domain.RoleTicketAgent, Active: true}, nil)
		s.mocks.reservationRepo.On("GetById", mock.Anything, 42).Return(pending(), nil)
		s.mocks.reservationRepo.On("UpdateState", mock.Anything, mock.Anything, domain.ReservationSeatOccupied).Return(nil)
		s.mocks.reservationRepo.On("SeatIDs", mock.Anything, 42).Return([]int{21}, nil)
		s.mocks.seatRepo.On("UpdateStatus", mock.Anything, []int{21}, domain.SeatOccupied).Return(nil)
		s.mocks.ticketRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Ticket).ReservationID = 42
		}).Return(nil)
		s.mocks.ticketRepo.On("GetByReservationId", mock.Anything, 42).Return(issuedTicket, nil)

		w := executeRequest(s.T(), s.app, http.MethodPost, "/reservations/42/confirmation",
			map[string]any{"employeeId": 9})

		s.Equal(http.StatusOK, w.Code)

		var resp TicketResponse
		s.NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Equal("BOL-0008", resp.Code)

		s.Eventually(func() bool {
			emails := s.mocks.mailer.GetSentEmails()
			return len(emails) == 1 && emails[0].Recipient == "maria@example.com"
		}, time.Second, 10*time.Millisecond)
	})
}

func (s *ReservationsTestSuite) TestCancelReservationHandler() {
	tests := []struct {
		name           string
		body           map[string]any
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:       "should fail when the reason is missing",
			body:       map[string]any{"employeeId": 4},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "should return 422 when the reason is too short",
			body: map[string]any{"employeeId": 4, "reason": "too short"},
			setupMocks: func() {
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: domain.ErrInvalidReason.Error(),
		},
		{
			name: "should accept a reason of exactly ten characters",
			body: map[string]any{"employeeId": 4, "reason": "0123456789"},
			setupMocks: func() {
				s.mocks.employeeRepo.On("GetById", mock.Anything, 4).
					Return(&domain.Employee{ID: 4, Role: domain.RoleSupervisor, Active: true}, nil)
				s.mocks.reservationRepo.On("GetById", mock.Anything, 42).
					Return(&domain.Reservation{ID: 42, Code: "RES-00042", ShowtimeID: 3, State: domain.ReservationConfirmed, Version: 2}, nil)
				s.mocks.reservationRepo.On("UpdateState", mock.Anything, mock.Anything, domain.ReservationSeatCancelled).Return(nil)
				s.mocks.reservationRepo.On("SeatIDs", mock.Anything, 42).Return([]int{21}, nil)
				s.mocks.seatRepo.On("UpdateStatus", mock.Anything, []int{21}, domain.SeatAvailable).Return(nil)
				s.mocks.showtimeRepo.On("AdjustAvailableSeats", mock.Anything, 3, 1).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:           "should return 422 when the reason exceeds two hundred characters",
			body:           map[string]any{"employeeId": 4, "reason": strings.Repeat("y", 201)},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: domain.ErrInvalidReason.Error(),
		},
		{
			name: "should return 403 for an unauthorized employee",
			body: map[string]any{"employeeId": 4, "reason": "customer asked for a refund"},
			setupMocks: func() {
				s.mocks.employeeRepo.On("GetById", mock.Anything, 4).
					Return(&domain.Employee{ID: 4, Role: domain.RoleSupervisor, Active: false}, nil)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "should return 409 when already cancelled",
			body: map[string]any{"employeeId": 4, "reason": "customer asked for a refund"},
			setupMocks: func() {
				s.mocks.employeeRepo.On("GetById", mock.Anything, 4).
					Return(&domain.Employee{ID: 4, Role: domain.RoleSupervisor, Active: true}, nil)
				s.mocks.reservationRepo.On("GetById", mock.Anything, 42).
					Return(&domain.Reservation{ID: 42, State: domain.ReservationCancelled}, nil)
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: domain.ErrAlreadyCancelled.Error(),
		},
		{
			name: "should cancel with valid input",
			body: map[string]any{"employeeId": 4, "reason": "customer asked for a refund"},
			setupMocks: func() {
				s.mocks.employeeRepo.On("GetById", mock.Anything, 4).
					Return(&domain.Employee{ID: 4, Role: domain.RoleSupervisor, Active: true}, nil)
				s.mocks.reservationRepo.On("GetById", mock.Anything, 42).
					Return(&domain.Reservation{ID: 42, Code: "RES-00042", ShowtimeID: 3, State: domain.ReservationConfirmed, Version: 2}, nil)
				s.mocks.reservationRepo.On("UpdateState", mock.Anything, mock.Anything, domain.ReservationSeatCancelled).Return(nil)
				s.mocks.reservationRepo.On("SeatIDs", mock.Anything, 42).Return([]int{21}, nil)
				s.mocks.seatRepo.On("UpdateStatus", mock.Anything, []int{21}, domain.SeatAvailable).Return(nil)
				s.mocks.showtimeRepo.On("AdjustAvailableSeats", mock.Anything, 3, 1).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w := executeRequest(s.T(), s.app, http.MethodPost, "/reservations/42/cancellation", tt.body)

			s.Equal(tt.wantStatus, w.Code)
			checkErrorResponse(s.T(), w, tt.wantStatus, tt.wantErrMessage)

			if tt.wantStatus == http.StatusOK {
				var resp ReservationResponse
				s.NoError(json.NewDecoder(w.Body).Decode(&resp))
				s.Equal(string(domain.ReservationCancelled), resp.State)
			}
		})
	}
}
