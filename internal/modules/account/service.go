// README: Account service: registration, wallet top-up, payment preference.
package account

import (
	"context"
	"strings"
	"time"

	"citycab/internal/clock"
	"citycab/internal/types"
)

type Repository interface {
	Exists(ctx context.Context, id types.ID) (bool, error)
	Get(ctx context.Context, id types.ID) (*Account, error)
	Create(ctx context.Context, a *Account) error
	// AdjustBalance adds delta minor units and returns the new balance. A
	// result below zero is rejected with ErrInsufficientFunds.
	AdjustBalance(ctx context.Context, id types.ID, delta int64) (types.Money, error)
	SetPaymentMethod(ctx context.Context, id types.ID, m PaymentMethod) error
	Count(ctx context.Context) (int, error)
}

type Service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{repo: repo, clock: clk}
}

type RegisterCommand struct {
	ID             types.ID
	Name           string
	PaymentMethod  PaymentMethod
	InitialBalance int64
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*Account, error) {
	if cmd.ID == "" || strings.TrimSpace(cmd.Name) == "" || cmd.InitialBalance < 0 {
		return nil, ErrBadRequest
	}
	if cmd.PaymentMethod == "" {
		cmd.PaymentMethod = PaymentCash
	}
	if cmd.PaymentMethod != PaymentWallet && cmd.PaymentMethod != PaymentCash {
		return nil, ErrBadRequest
	}
	a := &Account{
		ID:            cmd.ID,
		Name:          strings.TrimSpace(cmd.Name),
		Balance:       types.Money{Amount: cmd.InitialBalance, Currency: types.DefaultCurrency},
		PaymentMethod: cmd.PaymentMethod,
		CreatedAt:     s.clock.Now().UTC().Truncate(time.Microsecond),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Account, error) {
	return s.repo.Get(ctx, id)
}

// TopUp credits the wallet; amount must be positive.
func (s *Service) TopUp(ctx context.Context, id types.ID, amount int64) (types.Money, error) {
	if amount <= 0 {
		return types.Money{}, ErrBadRequest
	}
	return s.repo.AdjustBalance(ctx, id, amount)
}

func (s *Service) ChangePaymentMethod(ctx context.Context, id types.ID, m PaymentMethod) error {
	if m != PaymentWallet && m != PaymentCash {
		return ErrBadRequest
	}
	return s.repo.SetPaymentMethod(ctx, id, m)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
