// README: Booking event log backed by PostgreSQL.
package booking

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EventStore struct {
	db *pgxpool.Pool
}

func NewEventStore(db *pgxpool.Pool) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) Publish(ctx context.Context, ev Event) error {
	var bookingID *string
	if ev.BookingID != "" {
		bookingID = &ev.BookingID
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO booking_events (request_id, booking_id, rider_id, from_state, to_state, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ev.RequestID, bookingID, string(ev.RiderID), string(ev.From), string(ev.To), ev.Detail, ev.At,
	)
	return err
}

// ListByRequest returns a request's transitions in the order they happened.
func (s *EventStore) ListByRequest(ctx context.Context, requestID string) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT request_id, COALESCE(booking_id, ''), rider_id, from_state, to_state, detail, created_at
		FROM booking_events
		WHERE request_id = $1
		ORDER BY id`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		var from, to string
		if err := rows.Scan(&ev.RequestID, &ev.BookingID, &ev.RiderID, &from, &to, &ev.Detail, &ev.At); err != nil {
			return nil, err
		}
		ev.From, ev.To = State(from), State(to)
		out = append(out, ev)
	}
	return out, rows.Err()
}
