// README: Fare calculator: distance times class rate, with peak-hour surge.
package pricing

import (
	"context"
	"fmt"
	"math"
	"time"

	"citycab/internal/modules/fleet"
	"citycab/internal/types"
)

type Calculator struct {
	rates map[fleet.Class]Rate
	loc   *time.Location
}

// NewCalculator starts from DefaultRates; overrides replace matching
// classes. A nil location means UTC.
func NewCalculator(loc *time.Location, overrides ...Rate) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	c := &Calculator{rates: make(map[fleet.Class]Rate, len(DefaultRates)), loc: loc}
	for _, r := range DefaultRates {
		c.rates[r.Class] = r
	}
	for _, r := range overrides {
		if !r.Class.Valid() || r.PerKm < 0 {
			continue
		}
		if r.Currency == "" {
			r.Currency = types.DefaultCurrency
		}
		c.rates[r.Class] = r
	}
	return c
}

type RateLister interface {
	ListRates(ctx context.Context) ([]Rate, error)
}

// LoadCalculator builds a calculator with rate overrides read from store.
func LoadCalculator(ctx context.Context, store RateLister, loc *time.Location) (*Calculator, error) {
	rates, err := store.ListRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fare rates: %w", err)
	}
	return NewCalculator(loc, rates...), nil
}

// Quote prices a ride of km in class requested at the given instant.
func (c *Calculator) Quote(km float64, class fleet.Class, at time.Time) (types.Money, error) {
	r, ok := c.rates[class]
	if !ok {
		return types.Money{}, ErrUnknownClass
	}
	fare := km * float64(r.PerKm)
	if c.IsSurge(at) {
		fare *= surgeMultiplier
	}
	return types.Money{Amount: int64(math.Round(fare)), Currency: r.Currency}, nil
}

func (c *Calculator) IsSurge(at time.Time) bool {
	return IsSurgeHour(at.In(c.loc).Hour())
}

func (c *Calculator) Rate(class fleet.Class) (Rate, error) {
	r, ok := c.rates[class]
	if !ok {
		return Rate{}, ErrUnknownClass
	}
	return r, nil
}

func (c *Calculator) Location() *time.Location { return c.loc }
