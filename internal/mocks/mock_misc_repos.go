package mocks

import (
	"context"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockEmployeeRepo struct {
	mock.Mock
	domain.EmployeeRepository
}

func (m *MockEmployeeRepo) GetById(ctx context.Context, employeeID int) (*domain.Employee, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

type MockFareRepo struct {
	mock.Mock
	domain.FareRepository
}

func (m *MockFareRepo) GetByCategory(ctx context.Context, category domain.FareCategory) (*domain.Fare, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Fare), args.Error(1)
}

func (m *MockFareRepo) GetAll(ctx context.Context) ([]domain.Fare, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fare), args.Error(1)
}

type MockTicketRepo struct {
	mock.Mock
	domain.TicketRepository
}

func (m *MockTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepo) GetByReservationId(ctx context.Context, reservationID int) (*domain.Ticket, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

type MockMovieRepo struct {
	mock.Mock
	domain.MovieRepository
}

func (m *MockMovieRepo) Create(ctx context.Context, movie *domain.Movie) error {
	args := m.Called(ctx, movie)
	return args.Error(0)
}

func (m *MockMovieRepo) GetById(ctx context.Context, movieID int) (*domain.Movie, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movie), args.Error(1)
}

// NoopTxManager runs the function directly, without a real transaction.
// Enough for handler and engine tests built on mock repositories.
type NoopTxManager struct{}

func (NoopTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
