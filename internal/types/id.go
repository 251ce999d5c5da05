// README: Identifier and geo point value objects.
package types

// ID identifies riders, vehicles and bookings. Riders and drivers use their
// phone number.
type ID string

func (id ID) String() string { return string(id) }

type Point struct {
	Lat float64
	Lng float64
}
