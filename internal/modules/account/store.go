// README: Account store backed by PostgreSQL.
package account

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"citycab/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Exists(ctx context.Context, id types.ID) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, string(id)).Scan(&ok)
	return ok, err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Account, error) {
	var a Account
	var method string
	err := s.db.QueryRow(ctx, `
		SELECT id, name, balance, currency, payment_method, created_at
		FROM accounts
		WHERE id = $1`, string(id),
	).Scan(&a.ID, &a.Name, &a.Balance.Amount, &a.Balance.Currency, &method, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.PaymentMethod = PaymentMethod(method)
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	currency := a.Balance.Currency
	if currency == "" {
		currency = types.DefaultCurrency
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO accounts (id, name, balance, currency, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(a.ID), a.Name, a.Balance.Amount, currency, string(a.PaymentMethod), a.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// AdjustBalance applies delta in a single guarded UPDATE so concurrent
// debits can never drive the balance negative.
func (s *Store) AdjustBalance(ctx context.Context, id types.ID, delta int64) (types.Money, error) {
	var m types.Money
	err := s.db.QueryRow(ctx, `
		UPDATE accounts
		SET balance = balance + $2
		WHERE id = $1 AND balance + $2 >= 0
		RETURNING balance, currency`,
		string(id), delta,
	).Scan(&m.Amount, &m.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		ok, existsErr := s.Exists(ctx, id)
		if existsErr != nil {
			return types.Money{}, existsErr
		}
		if !ok {
			return types.Money{}, ErrNotFound
		}
		return types.Money{}, ErrInsufficientFunds
	}
	if err != nil {
		return types.Money{}, err
	}
	return m, nil
}

func (s *Store) SetPaymentMethod(ctx context.Context, id types.ID, m PaymentMethod) error {
	tag, err := s.db.Exec(ctx, `UPDATE accounts SET payment_method = $2 WHERE id = $1`, string(id), string(m))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	return n, err
}
