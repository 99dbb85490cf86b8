package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	maxSeatsPerReservation = 3

	// txRetries bounds how many times a booking transaction is replayed
	// after a serialization conflict before the conflict is surfaced.
	txRetries = 3
)

// Engine orchestrates seat reservation: validation, the showtime capacity
// lock, price computation and state transitions. It is storage-agnostic;
// everything it touches goes through the domain repositories and TxManager.
type Engine struct {
	logger       *slog.Logger
	tx           domain.TxManager
	showtimes    domain.ShowtimeRepository
	seats        domain.SeatRepository
	reservations domain.ReservationRepository
	tickets      domain.TicketRepository
	customers    domain.CustomerRepository
	employees    domain.EmployeeRepository
	pricing      *Pricing
	metrics      *Metrics

	now func() time.Time
}

type EngineOptions struct {
	Logger       *slog.Logger
	Tx           domain.TxManager
	Showtimes    domain.ShowtimeRepository
	Seats        domain.SeatRepository
	Reservations domain.ReservationRepository
	Tickets      domain.TicketRepository
	Customers    domain.CustomerRepository
	Employees    domain.EmployeeRepository
	Pricing      *Pricing
	Metrics      *Metrics

	// Now overrides the engine clock, used by tests.
	Now func() time.Time
}

func NewEngine(opts EngineOptions) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		logger:       opts.Logger,
		tx:           opts.Tx,
		showtimes:    opts.Showtimes,
		seats:        opts.Seats,
		reservations: opts.Reservations,
		tickets:      opts.Tickets,
		customers:    opts.Customers,
		employees:    opts.Employees,
		pricing:      opts.Pricing,
		metrics:      opts.Metrics,
		now:          now,
	}
}

// SeatSelection is one requested seat in a held reservation.
type SeatSelection struct {
	Row    string
	Number int
	Fare   domain.FareCategory
}

type CreateReservationInput struct {
	CustomerID int
	ShowtimeID int
	// EmployeeID is zero for self-service bookings.
	EmployeeID int
	Seats      []SeatSelection
}

// CreateReservation places a 15-minute hold on the selected seats. The whole
// check-and-write sequence runs under the showtime's capacity lock so two
// concurrent bookings cannot oversell the same showtime.
func (e *Engine) CreateReservation(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error) {
	if len(input.Seats) < 1 || len(input.Seats) > maxSeatsPerReservation {
		return nil, domain.ErrInvalidSeatCount
	}

	customer, err := e.customers.GetById(ctx, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("customer %d: %w", input.CustomerID, err)
	}
	if !customer.Active {
		return nil, domain.ErrCustomerInactive
	}

	if input.EmployeeID != 0 {
		if _, err := e.employees.GetById(ctx, input.EmployeeID); err != nil {
			return nil, fmt.Errorf("employee %d: %w", input.EmployeeID, err)
		}
	}

	showtime, err := e.showtimes.GetById(ctx, input.ShowtimeID)
	if err != nil {
		return nil, fmt.Errorf("showtime %d: %w", input.ShowtimeID, err)
	}
	if !showtime.Bookable(e.now()) {
		return nil, domain.ErrShowtimeNotBookable
	}

	var reservation *domain.Reservation

	err = e.withRetry(ctx, func(ctx context.Context) error {
		available, err := e.showtimes.AvailableSeatsForUpdate(ctx, showtime.ID)
		if err != nil {
			return err
		}
		if available < len(input.Seats) {
			return domain.ErrInsufficientCapacity
		}

		seats, err := e.resolveSelections(ctx, showtime.RoomID, input.Seats)
		if err != nil {
			return err
		}

		now := e.now()

		reservation = &domain.Reservation{
			ShowtimeID:   showtime.ID,
			CustomerID:   customer.ID,
			RegisteredBy: input.EmployeeID,
			State:        domain.ReservationPending,
			CreatedAt:    now,
			ExpiresAt:    now.Add(domain.HoldTTL),
		}

		total := decimal.Zero
		seatIDs := make([]int, 0, len(seats))

		for i, seat := range seats {
			fare, err := e.pricing.Resolve(ctx, input.Seats[i].Fare)
			if err != nil {
				return err
			}

			total = total.Add(fare.BasePrice)
			seatIDs = append(seatIDs, seat.ID)

			reservation.ReservationSeat = append(reservation.ReservationSeat, domain.ReservationSeat{
				ShowtimeID: showtime.ID,
				SeatID:     seat.ID,
				FareID:     fare.ID,
				UnitPrice:  fare.BasePrice,
				Status:     domain.ReservationSeatPending,
				Location:   seat.Location(),
				SeatType:   seat.Type,
			})
		}

		reservation.TotalPrice = total

		if err := e.reservations.Create(ctx, reservation); err != nil {
			return err
		}

		if err := e.seats.UpdateStatus(ctx, seatIDs, domain.SeatHeld); err != nil {
			return err
		}

		return e.showtimes.AdjustAvailableSeats(ctx, showtime.ID, -len(seatIDs))
	})
	if err != nil {
		return nil, err
	}

	e.metrics.ReservationCreated(ctx)
	e.logger.Info("reservation created",
		"code", reservation.Code,
		"showtime_id", showtime.ID,
		"seats", len(reservation.ReservationSeat),
		"expires_at", reservation.ExpiresAt,
	)

	return reservation, nil
}

// resolveSelections maps the requested (row, number) pairs to seats in the
// room and enforces availability and fare-category rules. Every conflicting
// seat is reported, not just the first.
func (e *Engine) resolveSelections(ctx context.Context, roomID int, selections []SeatSelection) ([]domain.Seat, error) {
	locations := make([]domain.SeatLocation, len(selections))
	seen := make(map[string]struct{}, len(selections))

	for i, sel := range selections {
		loc := domain.SeatLocation{Row: sel.Row, Number: sel.Number}
		if _, dup := seen[loc.String()]; dup {
			return nil, domain.ErrDuplicateSeats
		}
		seen[loc.String()] = struct{}{}
		locations[i] = loc
	}

	found, err := e.seats.GetByRoomAndLocations(ctx, roomID, locations)
	if err != nil {
		return nil, err
	}

	byLocation := make(map[string]domain.Seat, len(found))
	for _, seat := range found {
		byLocation[seat.Location()] = seat
	}

	var missing []string
	seats := make([]domain.Seat, 0, len(selections))

	for _, loc := range locations {
		seat, ok := byLocation[loc.String()]
		if !ok {
			missing = append(missing, loc.String())
			continue
		}
		seats = append(seats, seat)
	}

	if len(missing) > 0 {
		return nil, &domain.SeatsNotFoundError{Locations: missing}
	}

	var unavailable []string
	for _, seat := range seats {
		if seat.Status != domain.SeatAvailable {
			unavailable = append(unavailable, fmt.Sprintf("%s (%s)", seat.Location(), seat.Status))
		}
	}
	if len(unavailable) > 0 {
		return nil, &domain.SeatsUnavailableError{Locations: unavailable}
	}

	for i, seat := range seats {
		required := domain.RequiredFare(seat.Type)
		if required != "" && required != selections[i].Fare {
			return nil, &domain.FareMismatchError{
				Location: seat.Location(),
				SeatType: seat.Type,
				Fare:     selections[i].Fare,
			}
		}
	}

	return seats, nil
}

// ConfirmReservation marks a pending reservation as paid and issues the
// ticket. Re-confirming is rejected, never silently repeated.
func (e *Engine) ConfirmReservation(ctx context.Context, reservationID, employeeID int) (*domain.Ticket, error) {
	employee, err := e.employees.GetById(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("employee %d: %w", employeeID, err)
	}
	if !employee.Active {
		return nil, domain.ErrNotAuthorized
	}

	var ticket *domain.Ticket

	err = e.withRetry(ctx, func(ctx context.Context) error {
		reservation, err := e.reservations.GetById(ctx, reservationID)
		if err != nil {
			return err
		}

		if reservation.State != domain.ReservationPending || reservation.Expired(e.now()) {
			return fmt.Errorf("reservation %s is %s: %w", reservation.Code, reservation.State, domain.ErrInvalidState)
		}

		reservation.State = domain.ReservationConfirmed
		reservation.RegisteredBy = employeeID

		if err := e.reservations.UpdateState(ctx, reservation, domain.ReservationSeatOccupied); err != nil {
			return err
		}

		seatIDs, err := e.reservations.SeatIDs(ctx, reservation.ID)
		if err != nil {
			return err
		}
		if err := e.seats.UpdateStatus(ctx, seatIDs, domain.SeatOccupied); err != nil {
			return err
		}

		ticket = &domain.Ticket{
			ReservationID: reservation.ID,
			TotalPrice:    reservation.TotalPrice,
			PaymentMethod: "Cash",
			SoldAt:        e.now(),
		}

		return e.tickets.Create(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	ticket, err = e.tickets.GetByReservationId(ctx, ticket.ReservationID)
	if err != nil {
		return nil, err
	}

	e.metrics.ReservationConfirmed(ctx)
	e.logger.Info("reservation confirmed", "reservation_id", reservationID, "ticket", ticket.Code)

	return ticket, nil
}

// CancelReservation cancels a pending or confirmed reservation and returns
// its seats to the pool. Capacity limits are not re-validated; the seats are
// simply released.
func (e *Engine) CancelReservation(ctx context.Context, reservationID, employeeID int, reason string) (*domain.Reservation, error) {
	reason = strings.TrimSpace(reason)
	if n := utf8.RuneCountInString(reason); n < 10 || n > 200 {
		return nil, domain.ErrInvalidReason
	}

	employee, err := e.employees.GetById(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("employee %d: %w", employeeID, err)
	}
	if !employee.Active || !employee.MayCancel() {
		return nil, domain.ErrNotAuthorized
	}

	var reservation *domain.Reservation

	err = e.withRetry(ctx, func(ctx context.Context) error {
		reservation, err = e.reservations.GetById(ctx, reservationID)
		if err != nil {
			return err
		}

		switch reservation.State {
		case domain.ReservationCancelled:
			return domain.ErrAlreadyCancelled
		case domain.ReservationPending, domain.ReservationConfirmed:
		default:
			return fmt.Errorf("reservation %s is %s: %w", reservation.Code, reservation.State, domain.ErrInvalidState)
		}

		now := e.now()

		reservation.State = domain.ReservationCancelled
		reservation.CancelledBy = &employeeID
		reservation.CancelledAt = &now
		reservation.CancelReason = reason

		return e.releaseSeats(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}

	e.metrics.ReservationCancelled(ctx)
	e.logger.Info("reservation cancelled", "reservation_id", reservationID, "by", employeeID)

	return reservation, nil
}

// releaseSeats cascades a terminal transition to the seat links, frees the
// seats and gives the capacity back to the showtime. Must run inside the
// caller's transaction.
func (e *Engine) releaseSeats(ctx context.Context, reservation *domain.Reservation) error {
	if err := e.reservations.UpdateState(ctx, reservation, domain.ReservationSeatCancelled); err != nil {
		return err
	}

	seatIDs, err := e.reservations.SeatIDs(ctx, reservation.ID)
	if err != nil {
		return err
	}

	if err := e.seats.UpdateStatus(ctx, seatIDs, domain.SeatAvailable); err != nil {
		return err
	}

	return e.showtimes.AdjustAvailableSeats(ctx, reservation.ShowtimeID, len(seatIDs))
}

type DirectSaleInput struct {
	FirstName  string
	LastName   string
	Phone      string
	ShowtimeID int
	EmployeeID int
	SeatIDs    []int
}

// DirectSale handles walk-up counter sales: no hold step, the reservation is
// created already confirmed with its seats occupied and the ticket issued in
// the same transaction. Fare categories are inferred from the seat types;
// standard seats are priced at the showtime base price.
func (e *Engine) DirectSale(ctx context.Context, input DirectSaleInput) (*domain.Ticket, error) {
	if len(input.SeatIDs) == 0 {
		return nil, domain.ErrInvalidSeatCount
	}

	employee, err := e.employees.GetById(ctx, input.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("employee %d: %w", input.EmployeeID, err)
	}
	if !employee.Active {
		return nil, domain.ErrNotAuthorized
	}

	showtime, err := e.showtimes.GetById(ctx, input.ShowtimeID)
	if err != nil {
		return nil, fmt.Errorf("showtime %d: %w", input.ShowtimeID, err)
	}
	if !showtime.Bookable(e.now()) {
		return nil, domain.ErrShowtimeNotBookable
	}

	var ticket *domain.Ticket

	err = e.withRetry(ctx, func(ctx context.Context) error {
		customer, err := e.customers.GetOrCreateByPhone(ctx, input.FirstName, input.LastName, input.Phone)
		if err != nil {
			return err
		}

		available, err := e.showtimes.AvailableSeatsForUpdate(ctx, showtime.ID)
		if err != nil {
			return err
		}
		if available < len(input.SeatIDs) {
			return domain.ErrInsufficientCapacity
		}

		seats, err := e.resolveSeatIDs(ctx, showtime.RoomID, input.SeatIDs)
		if err != nil {
			return err
		}

		now := e.now()

		reservation := &domain.Reservation{
			ShowtimeID:   showtime.ID,
			CustomerID:   customer.ID,
			RegisteredBy: input.EmployeeID,
			State:        domain.ReservationConfirmed,
			CreatedAt:    now,
			// Born confirmed, so there is no hold to expire.
			ExpiresAt: now,
		}

		total := decimal.Zero
		seatIDs := make([]int, 0, len(seats))

		for _, seat := range seats {
			fare, err := e.pricing.Resolve(ctx, InferCategory(seat.Type))
			if err != nil {
				return err
			}

			// Walk-up standard seats sell at the showtime's base price;
			// accessible and companion seats keep their fare price.
			price := fare.BasePrice
			if seat.Type == domain.SeatTypeStandard {
				price = showtime.BasePrice
			}

			total = total.Add(price)
			seatIDs = append(seatIDs, seat.ID)

			reservation.ReservationSeat = append(reservation.ReservationSeat, domain.ReservationSeat{
				ShowtimeID: showtime.ID,
				SeatID:     seat.ID,
				FareID:     fare.ID,
				UnitPrice:  price,
				Status:     domain.ReservationSeatOccupied,
				Location:   seat.Location(),
				SeatType:   seat.Type,
			})
		}

		reservation.TotalPrice = total

		if err := e.reservations.Create(ctx, reservation); err != nil {
			return err
		}

		if err := e.seats.UpdateStatus(ctx, seatIDs, domain.SeatOccupied); err != nil {
			return err
		}

		if err := e.showtimes.AdjustAvailableSeats(ctx, showtime.ID, -len(seatIDs)); err != nil {
			return err
		}

		ticket = &domain.Ticket{
			ReservationID: reservation.ID,
			TotalPrice:    total,
			PaymentMethod: "Cash",
			SoldAt:        now,
		}

		return e.tickets.Create(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	ticket, err = e.tickets.GetByReservationId(ctx, ticket.ReservationID)
	if err != nil {
		return nil, err
	}

	e.metrics.ReservationCreated(ctx)
	e.metrics.ReservationConfirmed(ctx)
	e.logger.Info("direct sale completed", "ticket", ticket.Code, "showtime_id", showtime.ID, "seats", len(input.SeatIDs))

	return ticket, nil
}

func (e *Engine) resolveSeatIDs(ctx context.Context, roomID int, seatIDs []int) ([]domain.Seat, error) {
	seen := make(map[int]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if _, dup := seen[id]; dup {
			return nil, domain.ErrDuplicateSeats
		}
		seen[id] = struct{}{}
	}

	seats, err := e.seats.GetByIDs(ctx, seatIDs)
	if err != nil {
		return nil, err
	}

	found := make(map[int]domain.Seat, len(seats))
	for _, seat := range seats {
		found[seat.ID] = seat
	}

	var missing []string
	resolved := make([]domain.Seat, 0, len(seatIDs))

	for _, id := range seatIDs {
		seat, ok := found[id]
		if !ok || seat.RoomID != roomID {
			missing = append(missing, fmt.Sprintf("#%d", id))
			continue
		}
		resolved = append(resolved, seat)
	}

	if len(missing) > 0 {
		return nil, &domain.SeatsNotFoundError{Locations: missing}
	}

	var unavailable []string
	for _, seat := range resolved {
		if seat.Status != domain.SeatAvailable {
			unavailable = append(unavailable, fmt.Sprintf("%s (%s)", seat.Location(), seat.Status))
		}
	}
	if len(unavailable) > 0 {
		return nil, &domain.SeatsUnavailableError{Locations: unavailable}
	}

	return resolved, nil
}

// ListSeatsForShowtime returns the seat map of the showtime's room, ordered
// by row and number.
func (e *Engine) ListSeatsForShowtime(ctx context.Context, showtimeID int) ([]domain.Seat, error) {
	if _, err := e.showtimes.GetById(ctx, showtimeID); err != nil {
		return nil, fmt.Errorf("showtime %d: %w", showtimeID, err)
	}

	return e.seats.GetByShowtime(ctx, showtimeID)
}

// GetReservationByCode looks a reservation up by its human-readable code.
func (e *Engine) GetReservationByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	return e.reservations.GetByCode(ctx, code)
}

// withRetry replays the transactional section a bounded number of times when
// the storage layer reports a serialization conflict. Any other failure rolls
// the whole operation back and is returned as-is.
func (e *Engine) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error

	for attempt := 0; attempt < txRetries; attempt++ {
		err = e.tx.WithTx(ctx, fn)
		if !errors.Is(err, domain.ErrEditConflict) {
			return err
		}

		e.logger.Warn("booking transaction conflict, retrying", "attempt", attempt+1)
	}

	return err
}
