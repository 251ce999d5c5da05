// README: Per-km fare rates for each vehicle class.
package pricing

import (
	"citycab/internal/modules/fleet"
	"citycab/internal/types"
)

// ErrUnknownClass is the fleet sentinel so callers can match either name.
var ErrUnknownClass = fleet.ErrUnknownClass

type Rate struct {
	Class    fleet.Class
	PerKm    int64 // minor units
	Currency string
}

// DefaultRates are ₹10, ₹15 and ₹20 per km.
var DefaultRates = []Rate{
	{Class: fleet.ClassTwoWheeler, PerKm: 1000, Currency: types.DefaultCurrency},
	{Class: fleet.ClassSedan, PerKm: 1500, Currency: types.DefaultCurrency},
	{Class: fleet.ClassVan, PerKm: 2000, Currency: types.DefaultCurrency},
}

const (
	surgeMultiplier = 1.25
	DefaultTimezone = "Asia/Kolkata"
)

// surgeWindows are inclusive local-hour ranges.
var surgeWindows = [][2]int{{8, 10}, {17, 20}}

func IsSurgeHour(hour int) bool {
	for _, w := range surgeWindows {
		if hour >= w[0] && hour <= w[1] {
			return true
		}
	}
	return false
}
