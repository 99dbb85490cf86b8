package mocks

import (
	"context"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockShowtimeRepo struct {
	mock.Mock
	domain.ShowtimeRepository
}

func (m *MockShowtimeRepo) GetById(ctx context.Context, showtimeID int) (*domain.Showtime, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Showtime), args.Error(1)
}

func (m *MockShowtimeRepo) GetListings(ctx context.Context, now time.Time) ([]domain.Listing, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *MockShowtimeRepo) Create(ctx context.Context, showtime *domain.Showtime) error {
	args := m.Called(ctx, showtime)
	return args.Error(0)
}

func (m *MockShowtimeRepo) HasOverlap(ctx context.Context, roomID int, start, end time.Time) (bool, error) {
	args := m.Called(ctx, roomID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *MockShowtimeRepo) AvailableSeatsForUpdate(ctx context.Context, showtimeID int) (int, error) {
	args := m.Called(ctx, showtimeID)
	return args.Int(0), args.Error(1)
}

func (m *MockShowtimeRepo) AdjustAvailableSeats(ctx context.Context, showtimeID, delta int) error {
	args := m.Called(ctx, showtimeID, delta)
	return args.Error(0)
}

type MockRoomRepo struct {
	mock.Mock
	domain.RoomRepository
}

func (m *MockRoomRepo) GetById(ctx context.Context, roomID int) (*domain.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}
