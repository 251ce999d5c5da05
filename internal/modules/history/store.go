// README: Ride history store backed by PostgreSQL.
package history

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"citycab/internal/modules/fleet"
	"citycab/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const recordColumns = `booking_id, rider_id, rider_name, source, destination, class,
	fare, currency, payment, vehicle_id, driver_name, distance_km, rating, booked_at`

func (s *Store) Append(ctx context.Context, r Record) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO rides (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		r.BookingID, string(r.RiderID), r.RiderName, r.Source, r.Destination, string(r.Class),
		r.Fare.Amount, r.Fare.Currency, r.Payment, string(r.VehicleID), r.DriverName,
		r.DistanceKm, r.Rating, r.BookedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (s *Store) Find(ctx context.Context, bookingID string) (*Record, error) {
	row := s.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM rides WHERE booking_id = $1`, bookingID)
	r, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// SetRating fills an unrated slot. The rating = 0 guard makes concurrent
// submissions race safely: exactly one wins.
func (s *Store) SetRating(ctx context.Context, bookingID string, rating int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides SET rating = $2
		WHERE booking_id = $1 AND rating = 0`,
		bookingID, rating,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := s.Find(ctx, bookingID); err != nil {
		return err
	}
	return ErrAlreadyRated
}

func (s *Store) ListByRider(ctx context.Context, riderID types.ID) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+recordColumns+`
		FROM rides
		WHERE rider_id = $1
		ORDER BY booked_at, booking_id`, string(riderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM rides`).Scan(&n)
	return n, err
}

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	var class string
	err := row.Scan(
		&r.BookingID, &r.RiderID, &r.RiderName, &r.Source, &r.Destination, &class,
		&r.Fare.Amount, &r.Fare.Currency, &r.Payment, &r.VehicleID, &r.DriverName,
		&r.DistanceKm, &r.Rating, &r.BookedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Class = fleet.Class(class)
	return &r, nil
}
