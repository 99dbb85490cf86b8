package booking

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the booking counters. A nil *Metrics is valid and records
// nothing, so tests and tools can run without a meter provider.
type Metrics struct {
	created   metric.Int64Counter
	confirmed metric.Int64Counter
	cancelled metric.Int64Counter
	expired   metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	created, err := meter.Int64Counter("booking.reservations.created",
		metric.WithDescription("Number of reservations created"))
	if err != nil {
		return nil, err
	}

	confirmed, err := meter.Int64Counter("booking.reservations.confirmed",
		metric.WithDescription("Number of reservations confirmed"))
	if err != nil {
		return nil, err
	}

	cancelled, err := meter.Int64Counter("booking.reservations.cancelled",
		metric.WithDescription("Number of reservations cancelled"))
	if err != nil {
		return nil, err
	}

	expired, err := meter.Int64Counter("booking.reservations.expired",
		metric.WithDescription("Number of pending reservations released by the sweeper"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		created:   created,
		confirmed: confirmed,
		cancelled: cancelled,
		expired:   expired,
	}, nil
}

func (m *Metrics) ReservationCreated(ctx context.Context) {
	if m != nil {
		m.created.Add(ctx, 1)
	}
}

func (m *Metrics) ReservationConfirmed(ctx context.Context) {
	if m != nil {
		m.confirmed.Add(ctx, 1)
	}
}

func (m *Metrics) ReservationCancelled(ctx context.Context) {
	if m != nil {
		m.cancelled.Add(ctx, 1)
	}
}

func (m *Metrics) ReservationExpired(ctx context.Context, count int) {
	if m != nil {
		m.expired.Add(ctx, int64(count))
	}
}
