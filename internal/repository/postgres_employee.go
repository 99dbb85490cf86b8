package repository

import (
	"context"
	"errors"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresEmployeeRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresEmployeeRepository(pool *pgxpool.Pool) *PostgresEmployeeRepository {
	return &PostgresEmployeeRepository{pool: pool}
}

func (p *PostgresEmployeeRepository) GetById(ctx context.Context, employeeID int) (*domain.Employee, error) {
	query := `
		SELECT id, first_name, last_name, role, active
		FROM employees
		WHERE id = $1
	`

	var employee domain.Employee

	err := queryEngine(ctx, p.pool).QueryRow(ctx, query, employeeID).Scan(
		&employee.ID,
		&employee.FirstName,
		&employee.LastName,
		&employee.Role,
		&employee.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, mapPgError(err)
	}

	return &employee, nil
}
