// README: Admin summary and health handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Counter interface {
	Count(ctx context.Context) (int, error)
}

type AdminHandler struct {
	users   Counter
	rides   Counter
	drivers func() int
}

func NewAdminHandler(users, rides Counter, drivers func() int) *AdminHandler {
	return &AdminHandler{users: users, rides: rides, drivers: drivers}
}

func (h *AdminHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()
	users, err := h.users.Count(ctx)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	rides, err := h.rides.Count(ctx)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]int{
		"users":   users,
		"drivers": h.drivers(),
		"rides":   rides,
	})
}

func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
