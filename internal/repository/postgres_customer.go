package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresCustomerRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCustomerRepository(pool *pgxpool.Pool) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{pool: pool}
}

func (p *PostgresCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (first_name, last_name, email, phone, active)
		VALUES ($1, $2, $3, NULLIF($4, ''), TRUE)
		RETURNING id, created_at
	`

	err := queryEngine(ctx, p.pool).QueryRow(
		ctx,
		query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
	).Scan(&customer.ID, &customer.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrCustomerExists
		}

		return mapPgError(err)
	}

	customer.Active = true

	return nil
}

const customerColumns = `id, first_name, last_name, email, COALESCE(phone, ''), active, created_at`

func (p *PostgresCustomerRepository) GetById(ctx context.Context, customerID int) (*domain.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)

	return p.queryCustomer(ctx, query, customerID)
}

func (p *PostgresCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE email = $1`, customerColumns)

	return p.queryCustomer(ctx, query, email)
}

// GetOrCreateByPhone backs walk-up sales. A customer without a known email
// gets a generated placeholder address, unique per record.
func (p *PostgresCustomerRepository) GetOrCreateByPhone(ctx context.Context, firstName, lastName, phone string) (*domain.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE phone = $1 AND active = TRUE`, customerColumns)

	customer, err := p.queryCustomer(ctx, query, phone)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}

	customer = &domain.Customer{
		FirstName: firstName,
		LastName:  lastName,
		Email:     uuid.NewString() + "@walkup.local",
		Phone:     phone,
	}

	if err := p.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

func (p *PostgresCustomerRepository) queryCustomer(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	var customer domain.Customer

	err := queryEngine(ctx, p.pool).QueryRow(ctx, query, arg).Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.Phone,
		&customer.Active,
		&customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, mapPgError(err)
	}

	return &customer, nil
}
