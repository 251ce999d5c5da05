// README: Collaborators the booking workflow depends on.
package booking

import (
	"context"
	"time"

	"citycab/internal/modules/account"
	"citycab/internal/modules/fleet"
	"citycab/internal/modules/history"
	"citycab/internal/types"
)

type Router interface {
	ShortestPath(src, dst string) (float64, []string)
	DisplayName(name string) string
}

type Fleet interface {
	Enumerate(class fleet.Class, onlyAvailable bool) []fleet.Vehicle
	Reserve(id types.ID) bool
	Release(id types.ID) bool
}

type Reseeder interface {
	Reseed(ctx context.Context) (int, error)
}

type Fares interface {
	Quote(km float64, class fleet.Class, at time.Time) (types.Money, error)
}

type Accounts interface {
	Get(ctx context.Context, id types.ID) (*account.Account, error)
	AdjustBalance(ctx context.Context, id types.ID, delta int64) (types.Money, error)
}

type History interface {
	Append(ctx context.Context, r history.Record) error
	Find(ctx context.Context, bookingID string) (*history.Record, error)
	SetRating(ctx context.Context, bookingID string, rating int) error
}

type Ratings interface {
	AddRating(ctx context.Context, vehicleID types.ID, stars int) error
	AverageRating(ctx context.Context, vehicleID types.ID) (float64, error)
}

// Prompter is the rider/driver side of a booking. Every call must return
// when ctx is done; the workflow bounds each call with its own timeout.
type Prompter interface {
	ConfirmBooking(ctx context.Context, offer Offer) (bool, error)
	// ChooseClass offers a different class when nothing is available.
	// ok is false when the rider does not want to switch.
	ChooseClass(ctx context.Context, current fleet.Class) (next fleet.Class, ok bool, err error)
	// VerifyCode shows v.Code to the rider and returns what the driver typed.
	VerifyCode(ctx context.Context, v Verification) (string, error)
	RequestRating(ctx context.Context, p RatingPrompt) (stars int, ok bool, err error)
}

// Observer is optionally implemented by a Prompter that wants every
// transition as it happens.
type Observer interface {
	Observe(ev Event)
}
