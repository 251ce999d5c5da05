package citygraph

import (
	"math"
	"testing"

	"citycab/internal/types"
)

func TestGreatCircleKm(t *testing.T) {
	saket := types.Point{Lat: 28.5244, Lng: 77.2069}
	tests := []struct {
		name   string
		p, q   types.Point
		wantKm float64
		tol    float64
	}{
		{"same point", saket, saket, 0, 0.001},
		{"Saket to Connaught Place", saket, types.Point{Lat: 28.6333, Lng: 77.2167}, 12.1, 0.5},
		{"Delhi to Mumbai", types.Point{Lat: 28.6139, Lng: 77.2090}, types.Point{Lat: 19.0760, Lng: 72.8777}, 1150, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := greatCircleKm(tt.p, tt.q); math.Abs(got-tt.wantKm) > tt.tol {
				t.Errorf("greatCircleKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tol)
			}
		})
	}
}

func TestGreatCircleKm_Symmetric(t *testing.T) {
	p := types.Point{Lat: 28.5, Lng: 77.0}
	q := types.Point{Lat: 28.7, Lng: 77.3}
	if d1, d2 := greatCircleKm(p, q), greatCircleKm(q, p); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("not symmetric: %f vs %f", d1, d2)
	}
}
