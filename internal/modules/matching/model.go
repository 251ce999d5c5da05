// README: Dispatch candidates: a vehicle plus its pickup ETA.
package matching

import "citycab/internal/modules/fleet"

const (
	// minutesPerKm converts driver-to-pickup distance into an ETA.
	minutesPerKm = 3
	// DefaultDisplayCount is how many candidates are offered to the rider.
	DefaultDisplayCount = 3
)

type Candidate struct {
	Vehicle    fleet.Vehicle `json:"vehicle"`
	ETAMinutes int           `json:"eta_minutes"`
	PickupKm   float64       `json:"pickup_km"`
}
