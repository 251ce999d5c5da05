// README: Driver handlers for registering and listing fleet vehicles.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"citycab/internal/modules/fleet"
	"citycab/internal/types"
)

type DriverHandler struct {
	fleet *fleet.Service
	graph interface{ LocationExists(string) bool }
}

func NewDriverHandler(fleetSvc *fleet.Service, graph interface{ LocationExists(string) bool }) *DriverHandler {
	return &DriverHandler{fleet: fleetSvc, graph: graph}
}

type createDriverReq struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Class    string `json:"class"`
}

func (h *DriverHandler) Create(c *gin.Context) {
	var req createDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	class, err := fleet.ParseClass(req.Class)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if !h.graph.LocationExists(req.Location) {
		writeError(c, http.StatusBadRequest, "unknown location")
		return
	}
	v := fleet.Vehicle{
		ID:        types.ID(req.ID),
		Name:      req.Name,
		Location:  req.Location,
		Class:     class,
		Available: true,
	}
	if err := h.fleet.Register(c.Request.Context(), v); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, v)
}

// List filters by ?class= and ?available=true.
func (h *DriverHandler) List(c *gin.Context) {
	var class fleet.Class
	if q := c.Query("class"); q != "" {
		parsed, err := fleet.ParseClass(q)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		class = parsed
	}
	onlyAvailable := c.Query("available") == "true"

	var out []fleet.Vehicle
	if class != "" {
		out = h.fleet.Index().Enumerate(class, onlyAvailable)
	} else {
		for _, k := range fleet.Classes {
			out = append(out, h.fleet.Index().Enumerate(k, onlyAvailable)...)
		}
	}
	if out == nil {
		out = []fleet.Vehicle{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"drivers": out})
}
