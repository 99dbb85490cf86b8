package mocks

import (
	"context"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockCustomerRepo struct {
	mock.Mock
	domain.CustomerRepository
}

func (m *MockCustomerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepo) GetById(ctx context.Context, customerID int) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepo) GetOrCreateByPhone(ctx context.Context, firstName, lastName, phone string) (*domain.Customer, error) {
	args := m.Called(ctx, firstName, lastName, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
