package domain

import (
	"context"
	"time"
)

type Customer struct {
	ID        int
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Active    bool
	CreatedAt time.Time
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	GetById(ctx context.Context, customerID int) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	// GetOrCreateByPhone backs walk-up sales: an existing customer is matched
	// by phone number, otherwise a minimal record is created.
	GetOrCreateByPhone(ctx context.Context, firstName, lastName, phone string) (*Customer, error)
}
