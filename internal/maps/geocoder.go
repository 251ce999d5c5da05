package maps

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"citycab/internal/types"
)

// ErrNoResult is returned when the geocoder knows no place by that name.
var ErrNoResult = errors.New("no geocoding result")

// Geocoder resolves location names to coordinates with the Google Maps
// Geocoding API. Lookups are biased to the configured region.
type Geocoder struct {
	client *maps.Client
	region string
	suffix string
}

// NewGeocoder creates a Geocoder with the given API key. region is a ccTLD
// bias such as "in"; suffix is appended to every query (", Delhi").
func NewGeocoder(apiKey, region, suffix string) (*Geocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Geocoder{client: client, region: region, suffix: suffix}, nil
}

// Locate returns the first match for name.
func (g *Geocoder) Locate(ctx context.Context, name string) (types.Point, error) {
	r := &maps.GeocodingRequest{
		Address: name + g.suffix,
		Region:  g.region,
	}
	results, err := g.client.Geocode(ctx, r)
	if err != nil {
		return types.Point{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(results) == 0 {
		return types.Point{}, ErrNoResult
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}
