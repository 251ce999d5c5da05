// README: Booking workflow states, requests and outcomes.
package booking

import (
	"time"

	"citycab/internal/modules/fleet"
	"citycab/internal/modules/matching"
	"citycab/internal/types"
)

type State string

const (
	StateQuoting              State = "quoting"
	StateMatching             State = "matching"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateReserved             State = "reserved"
	StateAwaitingPayment      State = "awaiting_payment"
	StateAwaitingVerification State = "awaiting_verification"
	StateInTransit            State = "in_transit"
	StateCompleted            State = "completed"
	StateCancelled            State = "cancelled"
	StateFailed               State = "failed"
)

// AllowedTransitions is the booking state diagram as code. Matching may
// loop back to Quoting once for a class change, and AwaitingConfirmation
// falls back to Matching when the chosen vehicle was taken.
var AllowedTransitions = map[State][]State{
	StateQuoting:              {StateMatching, StateCancelled, StateFailed},
	StateMatching:             {StateQuoting, StateAwaitingConfirmation, StateReserved, StateCancelled, StateFailed},
	StateAwaitingConfirmation: {StateReserved, StateMatching, StateCancelled, StateFailed},
	StateReserved:             {StateAwaitingPayment, StateCancelled, StateFailed},
	StateAwaitingPayment:      {StateAwaitingVerification, StateCancelled, StateFailed},
	StateAwaitingVerification: {StateInTransit, StateCancelled, StateFailed},
	StateInTransit:            {StateCompleted, StateCancelled, StateFailed},
}

func CanTransition(from, to State) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// Payment outcomes recorded on a booking.
const (
	PaymentWallet       = "wallet"
	PaymentCash         = "cash"
	PaymentCashFallback = "cash_fallback"
)

type Request struct {
	RequestID   string
	RiderID     types.ID
	Source      string
	Destination string
	Class       fleet.Class
}

type Quote struct {
	Source      string      `json:"source"`
	Destination string      `json:"destination"`
	Class       fleet.Class `json:"class"`
	DistanceKm  float64     `json:"distance_km"`
	Path        []string    `json:"path"`
	Fare        types.Money `json:"fare"`
}

// Offer is what the rider sees before confirming.
type Offer struct {
	Quote      Quote         `json:"quote"`
	Candidates []RankedOffer `json:"candidates"`
}

type RankedOffer struct {
	matching.Candidate
	AverageRating float64 `json:"average_rating"`
}

// Verification carries the code the rider reads out to the driver.
type Verification struct {
	BookingID string        `json:"booking_id"`
	Code      string        `json:"code"`
	Vehicle   fleet.Vehicle `json:"vehicle"`
}

type RatingPrompt struct {
	BookingID string        `json:"booking_id"`
	Vehicle   fleet.Vehicle `json:"vehicle"`
}

type Outcome struct {
	RequestID  string         `json:"request_id"`
	State      State          `json:"state"`
	Err        error          `json:"-"`
	BookingID  string         `json:"booking_id,omitempty"`
	Quote      *Quote         `json:"quote,omitempty"`
	Vehicle    *fleet.Vehicle `json:"vehicle,omitempty"`
	ETAMinutes int            `json:"eta_minutes,omitempty"`
	Payment    string         `json:"payment,omitempty"`
	Rating     int            `json:"rating,omitempty"`
	// RatingErr is set when the rating given at completion was rejected.
	RatingErr error     `json:"-"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}
