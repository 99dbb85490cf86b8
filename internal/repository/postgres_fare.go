package repository

import (
	"context"
	"errors"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresFareRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresFareRepository(pool *pgxpool.Pool) *PostgresFareRepository {
	return &PostgresFareRepository{pool: pool}
}

func (p *PostgresFareRepository) GetByCategory(ctx context.Context, category domain.FareCategory) (*domain.Fare, error) {
	query := `
		SELECT id, category, base_price
		FROM fares
		WHERE category = $1
	`

	var fare domain.Fare

	err := queryEngine(ctx, p.pool).QueryRow(ctx, query, category).Scan(&fare.ID, &fare.Category, &fare.BasePrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, mapPgError(err)
	}

	return &fare, nil
}

func (p *PostgresFareRepository) GetAll(ctx context.Context) ([]domain.Fare, error) {
	query := `
		SELECT id, category, base_price
		FROM fares
		ORDER BY id
	`

	rows, err := queryEngine(ctx, p.pool).Query(ctx, query)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	fares := make([]domain.Fare, 0)

	for rows.Next() {
		var fare domain.Fare

		if err = rows.Scan(&fare.ID, &fare.Category, &fare.BasePrice); err != nil {
			return nil, err
		}

		fares = append(fares, fare)
	}

	if err = rows.Err(); err != nil {
		return nil, mapPgError(err)
	}

	return fares, nil
}
