package citygraph

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"citycab/internal/types"
)

func TestLoadEdgesCSV(t *testing.T) {
	input := `from,to,distance
Saket,INA,7.54
Saket, Lajpat Nagar ,5.2
broken row
Hauz Khas,Saket,abc
Hauz Khas,Saket,-2
Green Park,Hauz Khas,1.9
`
	g := New()
	added, skipped, err := LoadEdgesCSV(g, strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadEdgesCSV: %v", err)
	}
	if added != 3 || skipped != 3 {
		t.Fatalf("added=%d skipped=%d, want 3 and 3", added, skipped)
	}
	if !g.LocationExists("lajpat nagar") || !g.LocationExists("Green Park") {
		t.Fatal("expected loaded locations to exist")
	}
	if g.LocationExists("Hauz Khas") == false {
		t.Fatal("Hauz Khas joined through Green Park row")
	}
	if d, _ := g.ShortestPath("Green Park", "Saket"); !math.IsInf(d, 1) {
		t.Fatalf("Green Park is only linked to Hauz Khas, got %v", d)
	}
}

func TestLoadEdgesCSV_Empty(t *testing.T) {
	added, skipped, err := LoadEdgesCSV(New(), strings.NewReader(""))
	if err != nil || added != 0 || skipped != 0 {
		t.Fatalf("got (%d, %d, %v)", added, skipped, err)
	}
}

type stubLookup struct {
	points map[string]types.Point
	calls  []string
}

func (s *stubLookup) Locate(_ context.Context, name string) (types.Point, error) {
	s.calls = append(s.calls, name)
	p, ok := s.points[name]
	if !ok {
		return types.Point{}, errors.New("zero results")
	}
	return p, nil
}

func TestFillCoordinates(t *testing.T) {
	g := NewDefault()
	g.AddEdge("Saket", "Hauz Khas", 3.1)
	g.AddEdge("Saket", "Mehrauli", 4.2)

	lookup := &stubLookup{points: map[string]types.Point{
		"Hauz Khas": {Lat: 28.5494, Lng: 77.2001},
	}}
	filled := FillCoordinates(context.Background(), g, lookup, nil)
	if filled != 1 {
		t.Fatalf("filled = %d, want 1", filled)
	}
	if len(lookup.calls) != 2 {
		t.Fatalf("lookup called for %v, want only the two uncovered locations", lookup.calls)
	}
	if _, ok := g.Coordinates("hauzkhas"); !ok {
		t.Fatal("Hauz Khas should now have coordinates")
	}
	if _, ok := g.Coordinates("Mehrauli"); ok {
		t.Fatal("Mehrauli lookup failed and must stay without coordinates")
	}
}
