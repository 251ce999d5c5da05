// README: Great-circle distance over the coordinate table.
package citygraph

import (
	"math"

	"citycab/internal/types"
)

const earthRadiusKm = 6371.0

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// greatCircleKm is the haversine distance between two points.
func greatCircleKm(p, q types.Point) float64 {
	sinLat := math.Sin(radians(q.Lat-p.Lat) / 2)
	sinLng := math.Sin(radians(q.Lng-p.Lng) / 2)
	h := sinLat*sinLat + math.Cos(radians(p.Lat))*math.Cos(radians(q.Lat))*sinLng*sinLng
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
