// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"citycab/internal/modules/account"
	"citycab/internal/modules/booking"
	"citycab/internal/modules/fleet"
	"citycab/internal/modules/history"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps sentinel errors from every module to a status.
// Anything unrecognised is a 500 without detail.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrBadRequest),
		errors.Is(err, account.ErrBadRequest),
		errors.Is(err, fleet.ErrBadRequest),
		errors.Is(err, fleet.ErrUnknownClass),
		errors.Is(err, booking.ErrInvalidRating):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, booking.ErrSessionNotFound),
		errors.Is(err, account.ErrNotFound),
		errors.Is(err, history.ErrNotFound),
		errors.Is(err, fleet.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrNoRoute):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, booking.ErrNoPrompt),
		errors.Is(err, booking.ErrSessionClosed),
		errors.Is(err, history.ErrAlreadyRated),
		errors.Is(err, account.ErrDuplicate),
		errors.Is(err, fleet.ErrDuplicateVehicle):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, account.ErrInsufficientFunds):
		writeError(c, http.StatusPaymentRequired, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
