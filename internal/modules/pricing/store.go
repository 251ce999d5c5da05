// README: Fare rate overrides backed by PostgreSQL.
package pricing

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"citycab/internal/modules/fleet"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) ListRates(ctx context.Context) ([]Rate, error) {
	rows, err := s.db.Query(ctx, `
		SELECT class, per_km_minor, currency
		FROM fare_rates
		ORDER BY per_km_minor`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rate
	for rows.Next() {
		var r Rate
		var class string
		if err := rows.Scan(&class, &r.PerKm, &r.Currency); err != nil {
			return nil, err
		}
		r.Class = fleet.Class(class)
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertRate writes one class rate.
func (s *Store) UpsertRate(ctx context.Context, r Rate) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO fare_rates (class, per_km_minor, currency)
		VALUES ($1, $2, $3)
		ON CONFLICT (class) DO UPDATE
		SET per_km_minor = EXCLUDED.per_km_minor, currency = EXCLUDED.currency`,
		string(r.Class), r.PerKm, r.Currency,
	)
	return err
}
