// README: Booking sentinel errors.
package booking

import (
	"errors"

	"citycab/internal/modules/history"
	"citycab/internal/modules/rating"
)

var (
	ErrBadRequest           = errors.New("bad request")
	ErrNotFound             = errors.New("not found")
	ErrNoRoute              = errors.New("no route between locations")
	ErrNoAvailability       = errors.New("no vehicle available")
	ErrReservationConflict  = errors.New("vehicle was reserved by another booking")
	ErrPaymentDeclined      = errors.New("payment declined")
	ErrVerificationMismatch = errors.New("verification code mismatch")
	ErrDeclined             = errors.New("rider declined")
	ErrPromptTimeout        = errors.New("no answer before timeout")
	ErrInterrupted          = errors.New("ride interrupted")
	ErrInvalidState         = errors.New("invalid state transition")

	ErrInvalidRating = rating.ErrInvalidRating
	ErrAlreadyRated  = history.ErrAlreadyRated
)
