// README: Common money value object used across modules (minor units).
package types

import (
	"fmt"
	"math"
)

// DefaultCurrency is the currency every fare and wallet is kept in.
const DefaultCurrency = "INR"

// Money is an amount in minor units (paise for INR).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Rupees builds a Money from a major-unit value, rounding to the nearest paisa.
func Rupees(v float64) Money {
	return Money{Amount: int64(math.Round(v * 100)), Currency: DefaultCurrency}
}

// Major returns the amount in major units.
func (m Money) Major() float64 {
	return float64(m.Amount) / 100
}

func (m Money) Add(o Money) Money {
	return Money{Amount: m.Amount + o.Amount, Currency: m.currency()}
}

func (m Money) Neg() Money {
	return Money{Amount: -m.Amount, Currency: m.currency()}
}

func (m Money) IsZero() bool { return m.Amount == 0 }

func (m Money) String() string {
	sign := ""
	amount := m.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%s %d.%02d", sign, m.currency(), amount/100, amount%100)
}

func (m Money) currency() string {
	if m.Currency == "" {
		return DefaultCurrency
	}
	return m.Currency
}
