package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresSeatRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSeatRepository(pool *pgxpool.Pool) *PostgresSeatRepository {
	return &PostgresSeatRepository{pool: pool}
}

const seatColumns = `id, room_id, seat_row, seat_number, seat_type, status, active`

func (p *PostgresSeatRepository) GetByRoomAndLocations(
	ctx context.Context,
	roomID int,
	locations []domain.SeatLocation) ([]domain.Seat, error) {

	if len(locations) == 0 {
		return []domain.Seat{}, nil
	}

	clauses := make([]string, len(locations))
	args := []any{roomID}

	for i, loc := range locations {
		clauses[i] = fmt.Sprintf("(seat_row = $%d AND seat_number = $%d)", len(args)+1, len(args)+2)
		args = append(args, loc.Row, loc.Number)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM seats
		WHERE room_id = $1 AND active = TRUE AND (%s)
	`, seatColumns, strings.Join(clauses, " OR "))

	return p.querySeats(ctx, query, args...)
}

func (p *PostgresSeatRepository) GetByIDs(ctx context.Context, seatIDs []int) ([]domain.Seat, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM seats
		WHERE id = ANY($1) AND active = TRUE
	`, seatColumns)

	return p.querySeats(ctx, query, seatIDs)
}

func (p *PostgresSeatRepository) GetByShowtime(ctx context.Context, showtimeID int) ([]domain.Seat, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM seats se
		JOIN showtimes sh ON sh.room_id = se.room_id
		WHERE sh.id = $1 AND se.active = TRUE
		ORDER BY se.seat_row, se.seat_number
	`, prefixColumns("se", seatColumns))

	return p.querySeats(ctx, query, showtimeID)
}

func (p *PostgresSeatRepository) UpdateStatus(ctx context.Context, seatIDs []int, status domain.SeatStatus) error {
	query := `
		UPDATE seats
		SET status = $1
		WHERE id = ANY($2)
	`

	tag, err := queryEngine(ctx, p.pool).Exec(ctx, query, status, seatIDs)
	if err != nil {
		return mapPgError(err)
	}

	if int(tag.RowsAffected()) != len(seatIDs) {
		return fmt.Errorf("seat status transition touched %d of %d seats: %w",
			tag.RowsAffected(), len(seatIDs), domain.ErrEditConflict)
	}

	return nil
}

func (p *PostgresSeatRepository) querySeats(ctx context.Context, query string, args ...any) ([]domain.Seat, error) {
	rows, err := queryEngine(ctx, p.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(
			&seat.ID,
			&seat.RoomID,
			&seat.Row,
			&seat.Number,
			&seat.Type,
			&seat.Status,
			&seat.Active,
		)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, mapPgError(err)
	}

	return seats, nil
}

func prefixColumns(prefix, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, col := range parts {
		parts[i] = prefix + "." + col
	}

	return strings.Join(parts, ", ")
}
