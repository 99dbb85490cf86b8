package mocks

import (
	"context"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSeatRepo struct {
	mock.Mock
	domain.SeatRepository
}

func (m *MockSeatRepo) GetByRoomAndLocations(ctx context.Context, roomID int, locations []domain.SeatLocation) ([]domain.Seat, error) {
	args := m.Called(ctx, roomID, locations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockSeatRepo) GetByIDs(ctx context.Context, seatIDs []int) ([]domain.Seat, error) {
	args := m.Called(ctx, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockSeatRepo) GetByShowtime(ctx context.Context, showtimeID int) ([]domain.Seat, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockSeatRepo) UpdateStatus(ctx context.Context, seatIDs []int, status domain.SeatStatus) error {
	args := m.Called(ctx, seatIDs, status)
	return args.Error(0)
}
