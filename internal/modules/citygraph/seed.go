// README: Built-in Delhi map, CSV edge loading and coordinate enrichment.
package citygraph

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"citycab/internal/types"
)

type Road struct {
	From, To string
	Km       float64
}

type Place struct {
	Name     string
	Lat, Lng float64
}

// DefaultRoads is the fallback map used when no edge file is configured.
var DefaultRoads = []Road{
	{"Saket", "INA", 7.54},
	{"Saket", "Lajpat Nagar", 5.2},
	{"Lajpat Nagar", "INA", 4.0},
	{"Saket", "Connaught Place", 10.5},
	{"Saket", "RK Puram", 4.8},
	{"Saket", "Jasola", 6.0},
}

var DefaultPlaces = []Place{
	{"Connaught Place", 28.6333, 77.2167},
	{"Lajpat Nagar", 28.5675, 77.2431},
	{"RK Puram", 28.5611, 77.1747},
	{"Saket", 28.5244, 77.2069},
	{"Jasola", 28.5422, 77.2847},
	{"INA", 28.5833, 77.2167},
}

// NewDefault builds the built-in map with coordinates.
func NewDefault() *Graph {
	g := New()
	for _, r := range DefaultRoads {
		g.AddEdge(r.From, r.To, r.Km)
	}
	AddPlaces(g, DefaultPlaces)
	return g
}

func AddPlaces(g *Graph, places []Place) {
	for _, p := range places {
		g.AddLocation(p.Name, p.Lat, p.Lng)
	}
}

// LoadEdgesCSV reads "from,to,km" rows after a header line into g. Rows that
// cannot be parsed are skipped; the counts of added and skipped rows are
// returned.
func LoadEdgesCSV(g *Graph, r io.Reader) (added, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("read header: %w", err)
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			return added, skipped, err
		}
		if len(rec) < 3 {
			skipped++
			continue
		}
		km, perr := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if perr != nil || !g.AddEdge(strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]), km) {
			skipped++
			continue
		}
		added++
	}
	return added, skipped, nil
}

// CoordinateLookup resolves a place name to a point, e.g. a geocoder.
type CoordinateLookup interface {
	Locate(ctx context.Context, name string) (types.Point, error)
}

// FillCoordinates geocodes every road-graph location that has no
// coordinates yet. Lookup failures are logged and skipped; the number of
// locations filled is returned.
func FillCoordinates(ctx context.Context, g *Graph, lookup CoordinateLookup, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	filled := 0
	for _, name := range g.Locations() {
		if _, ok := g.Coordinates(name); ok {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		p, err := lookup.Locate(ctx, name)
		if err != nil {
			logger.Warn("geocode location", "location", name, "err", err)
			continue
		}
		g.AddLocation(name, p.Lat, p.Lng)
		filled++
	}
	return filled
}
