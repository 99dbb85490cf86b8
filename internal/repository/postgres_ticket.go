package repository

import (
	"context"
	"errors"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

func (p *PostgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	db := queryEngine(ctx, p.pool)

	query := `
		INSERT INTO tickets (code, reservation_id, total_price, payment_method, sold_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	placeholder := "TMP-" + uuid.NewString()

	err := db.QueryRow(
		ctx,
		query,
		placeholder,
		ticket.ReservationID,
		ticket.TotalPrice,
		ticket.PaymentMethod,
		ticket.SoldAt,
	).Scan(&ticket.ID)
	if err != nil {
		return mapPgError(err)
	}

	err = db.QueryRow(ctx, `
		UPDATE tickets
		SET code = 'BOL-' || LPAD(id::text, 4, '0')
		WHERE id = $1
		RETURNING code
	`, ticket.ID).Scan(&ticket.Code)

	return mapPgError(err)
}

func (p *PostgresTicketRepository) GetByReservationId(ctx context.Context, reservationID int) (*domain.Ticket, error) {
	query := `
		SELECT
			t.id,
			t.code,
			t.reservation_id,
			t.total_price,
			t.payment_method,
			t.sold_at,
			r.code,
			c.first_name || ' ' || c.last_name,
			c.email,
			m.title,
			rm.name,
			s.start_time
		FROM tickets t
		JOIN reservations r ON t.reservation_id = r.id
		JOIN customers c ON r.customer_id = c.id
		JOIN showtimes s ON r.showtime_id = s.id
		JOIN movies m ON s.movie_id = m.id
		JOIN rooms rm ON s.room_id = rm.id
		WHERE t.reservation_id = $1
	`

	var ticket domain.Ticket

	err := queryEngine(ctx, p.pool).QueryRow(ctx, query, reservationID).Scan(
		&ticket.ID,
		&ticket.Code,
		&ticket.ReservationID,
		&ticket.TotalPrice,
		&ticket.PaymentMethod,
		&ticket.SoldAt,
		&ticket.ReservationCode,
		&ticket.CustomerName,
		&ticket.CustomerEmail,
		&ticket.MovieTitle,
		&ticket.RoomName,
		&ticket.ShowtimeStart,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, mapPgError(err)
	}

	locations, err := p.retrieveSeatLocations(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	ticket.SeatLocations = locations

	return &ticket, nil
}

func (p *PostgresTicketRepository) retrieveSeatLocations(ctx context.Context, reservationID int) ([]string, error) {
	query := `
		SELECT s.seat_row || s.seat_number::text || ' (' || s.seat_type || ')'
		FROM reservation_seats rs
		JOIN seats s ON rs.seat_id = s.id
		WHERE rs.reservation_id = $1
		ORDER BY s.seat_row, s.seat_number
	`

	rows, err := queryEngine(ctx, p.pool).Query(ctx, query, reservationID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	locations := make([]string, 0)

	for rows.Next() {
		var location string

		if err = rows.Scan(&location); err != nil {
			return nil, err
		}

		locations = append(locations, location)
	}

	if err = rows.Err(); err != nil {
		return nil, mapPgError(err)
	}

	return locations, nil
}
