// README: Rider account with wallet balance and payment preference.
package account

import (
	"errors"
	"strings"
	"time"

	"citycab/internal/types"
)

type PaymentMethod string

const (
	PaymentWallet PaymentMethod = "wallet"
	PaymentCash   PaymentMethod = "cash"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wallet", "1":
		return PaymentWallet, nil
	case "cash", "2":
		return PaymentCash, nil
	}
	return "", ErrBadRequest
}

var (
	ErrNotFound          = errors.New("account not found")
	ErrDuplicate         = errors.New("account already exists")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrBadRequest        = errors.New("bad request")
)

type Account struct {
	ID            types.ID      `json:"id"`
	Name          string        `json:"name"`
	Balance       types.Money   `json:"balance"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CreatedAt     time.Time     `json:"created_at"`
}
