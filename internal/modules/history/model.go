// README: Completed-ride records and the per-ride rating slot.
package history

import (
	"errors"
	"time"

	"citycab/internal/modules/fleet"
	"citycab/internal/types"
)

var (
	ErrNotFound     = errors.New("ride not found")
	ErrDuplicate    = errors.New("ride already recorded")
	ErrAlreadyRated = errors.New("ride already rated")
)

type Record struct {
	BookingID   string      `json:"booking_id"`
	RiderID     types.ID    `json:"rider_id"`
	RiderName   string      `json:"rider_name"`
	Source      string      `json:"source"`
	Destination string      `json:"destination"`
	Class       fleet.Class `json:"class"`
	Fare        types.Money `json:"fare"`
	Payment     string      `json:"payment"`
	VehicleID   types.ID    `json:"vehicle_id"`
	DriverName  string      `json:"driver_name"`
	DistanceKm  float64     `json:"distance_km"`
	Rating      int         `json:"rating"` // 0 = unrated
	BookedAt    time.Time   `json:"booked_at"`
}

func (r Record) Rated() bool { return r.Rating != 0 }
