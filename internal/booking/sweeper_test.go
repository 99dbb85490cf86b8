package booking

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/cinestar/cinema-ticketing/internal/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SweeperTestSuite struct {
	suite.Suite
	sweeper *Sweeper

	showtimeRepo    *mocks.MockShowtimeRepo
	seatRepo        *mocks.MockSeatRepo
	reservationRepo *mocks.MockReservationRepo
}

func (s *SweeperTestSuite) SetupTest() {
	s.showtimeRepo = new(mocks.MockShowtimeRepo)
	s.seatRepo = new(mocks.MockSeatRepo)
	s.reservationRepo = new(mocks.MockReservationRepo)

	engine := NewEngine(EngineOptions{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tx:           mocks.NoopTxManager{},
		Showtimes:    s.showtimeRepo,
		Seats:        s.seatRepo,
		Reservations: s.reservationRepo,
		Now:          func() time.Time { return testNow },
	})

	s.sweeper = NewSweeper(engine, time.Minute)
}

func TestSweeperSuite(t *testing.T) {
	suite.Run(t, new(SweeperTestSuite))
}

func (s *SweeperTestSuite) TestSweep() {
	overdue := func(id int) *domain.Reservation {
		return &domain.Reservation{
			ID:         id,
			ShowtimeID: 3,
			State:      domain.ReservationPending,
			ExpiresAt:  testNow.Add(-time.Minute),
			Version:    1,
		}
	}

	s.Run("releases every overdue hold in the batch", func() {
		s.SetupTest()

		s.reservationRepo.On("ExpiredPending", mock.Anything, testNow, sweepBatchSize).Return([]int{1, 2}, nil)

		for _, id := range []int{1, 2} {
			s.reservationRepo.On("GetById", mock.Anything, id).Return(overdue(id), nil)
			s.reservationRepo.On("SeatIDs", mock.Anything, id).Return([]int{10 + id}, nil)
		}
		s.reservationRepo.On("UpdateState", mock.Anything, mock.MatchedBy(func(r *domain.Reservation) bool {
			return r.State == domain.ReservationExpired
		}), domain.ReservationSeatCancelled).Return(nil).Times(2)
		s.seatRepo.On("UpdateStatus", mock.Anything, mock.Anything, domain.SeatAvailable).Return(nil).Times(2)
		s.showtimeRepo.On("AdjustAvailableSeats", mock.Anything, 3, 1).Return(nil).Times(2)

		released := s.sweeper.Sweep(context.Background())

		s.Equal(2, released)
		s.reservationRepo.AssertExpectations(s.T())
	})

	s.Run("skips reservations that were confirmed in the meantime", func() {
		s.SetupTest()

		confirmed := overdue(1)
		confirmed.State = domain.ReservationConfirmed

		s.reservationRepo.On("ExpiredPending", mock.Anything, testNow, sweepBatchSize).Return([]int{1}, nil)
		s.reservationRepo.On("GetById", mock.Anything, 1).Return(confirmed, nil)

		released := s.sweeper.Sweep(context.Background())

		s.Equal(1, released)
		s.reservationRepo.AssertNotCalled(s.T(), "UpdateState", mock.Anything, mock.Anything, mock.Anything)
	})

	s.Run("tolerates a reservation that disappeared", func() {
		s.SetupTest()

		s.reservationRepo.On("ExpiredPending", mock.Anything, testNow, sweepBatchSize).Return([]int{9}, nil)
		s.reservationRepo.On("GetById", mock.Anything, 9).Return(nil, domain.ErrRecordNotFound)

		released := s.sweeper.Sweep(context.Background())

		s.Equal(1, released)
	})

	s.Run("continues past individual failures", func() {
		s.SetupTest()

		s.reservationRepo.On("ExpiredPending", mock.Anything, testNow, sweepBatchSize).Return([]int{1, 2}, nil)
		s.reservationRepo.On("GetById", mock.Anything, 1).Return(nil, context.DeadlineExceeded)
		s.reservationRepo.On("GetById", mock.Anything, 2).Return(overdue(2), nil)
		s.reservationRepo.On("UpdateState", mock.Anything, mock.Anything, domain.ReservationSeatCancelled).Return(nil)
		s.reservationRepo.On("SeatIDs", mock.Anything, 2).Return([]int{12}, nil)
		s.seatRepo.On("UpdateStatus", mock.Anything, []int{12}, domain.SeatAvailable).Return(nil)
		s.showtimeRepo.On("AdjustAvailableSeats", mock.Anything, 3, 1).Return(nil)

		released := s.sweeper.Sweep(context.Background())

		s.Equal(1, released)
	})
}

func (s *SweeperTestSuite) TestStartStopsOnContextCancel() {
	s.SetupTest()

	ctx, cancel := context.WithCancel(context.Background())
	go s.sweeper.Start(ctx)

	cancel()

	select {
	case <-s.sweeper.Done():
	case <-time.After(time.Second):
		s.Fail("sweeper did not stop after context cancellation")
	}
}
