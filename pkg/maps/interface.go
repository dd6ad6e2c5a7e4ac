package maps

import (
	"context"
	"errors"
)

// ErrNoResults is returned when a lookup succeeds but matches nothing.
var ErrNoResults = errors.New("no geocoding results")

type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResponse, error)
}

type GeocodeResponse struct {
	Results []GeocodeResult `json:"results"`
}

type GeocodeResult struct {
	PlaceID     string   `json:"place_id"`
	Address     string   `json:"formatted_address"`
	Coordinates Location `json:"geometry"`
	Types       []string `json:"types"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FormattedAddress returns the most specific address of the response.
func (r *GeocodeResponse) FormattedAddress() (string, error) {
	if r == nil || len(r.Results) == 0 || r.Results[0].Address == "" {
		return "", ErrNoResults
	}
	return r.Results[0].Address, nil
}
