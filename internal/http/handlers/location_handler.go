// README: Location handlers; lists the places the road graph knows.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"citycab/internal/types"
)

// LocationSource is the read side of the city graph.
type LocationSource interface {
	Locations() []string
	Coordinates(name string) (types.Point, bool)
}

type LocationHandler struct {
	graph LocationSource
}

func NewLocationHandler(g LocationSource) *LocationHandler {
	return &LocationHandler{graph: g}
}

type locationView struct {
	Name  string       `json:"name"`
	Point *types.Point `json:"point,omitempty"`
}

func (h *LocationHandler) List(c *gin.Context) {
	names := h.graph.Locations()
	out := make([]locationView, 0, len(names))
	for _, n := range names {
		v := locationView{Name: n}
		if p, ok := h.graph.Coordinates(n); ok {
			v.Point = &p
		}
		out = append(out, v)
	}
	writeJSON(c, http.StatusOK, map[string]any{"locations": out})
}
