// README: Dispatch matcher ranks available vehicles by ETA to the pickup.
package matching

import (
	"math"
	"sort"

	"citycab/internal/modules/fleet"
)

type Router interface {
	ShortestPath(src, dst string) (float64, []string)
}

type Fleet interface {
	Enumerate(class fleet.Class, onlyAvailable bool) []fleet.Vehicle
}

// FindCandidates returns every available vehicle of class that can reach
// source, ordered by ETA. Ties keep registration order. An empty result is
// not an error.
func FindCandidates(source string, class fleet.Class, f Fleet, g Router) []Candidate {
	vehicles := f.Enumerate(class, true)
	out := make([]Candidate, 0, len(vehicles))
	for _, v := range vehicles {
		km, _ := g.ShortestPath(v.Location, source)
		if math.IsInf(km, 1) {
			continue
		}
		out = append(out, Candidate{Vehicle: v, ETAMinutes: ETAMinutes(km), PickupKm: km})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ETAMinutes < out[j].ETAMinutes
	})
	return out
}

// ETAMinutes is round(km * 3), never below one minute.
func ETAMinutes(km float64) int {
	eta := int(math.Round(km * minutesPerKm))
	if eta < 1 {
		return 1
	}
	return eta
}

// Top returns at most n leading candidates.
func Top(cands []Candidate, n int) []Candidate {
	if n <= 0 {
		return nil
	}
	if len(cands) < n {
		n = len(cands)
	}
	return cands[:n]
}
