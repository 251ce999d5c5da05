// README: City graph model: normalized location keys and weighted edges.
package citygraph

import (
	"strings"
	"unicode"
)

// Edge is one direction of an undirected road segment.
type Edge struct {
	To     string
	Weight float64 // km
}

// Normalize turns a location name into its lookup key: whitespace is
// dropped and letters are lower-cased, so "Lajpat Nagar" and "lajpatnagar"
// name the same place.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
