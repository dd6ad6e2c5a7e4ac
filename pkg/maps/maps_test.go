package maps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestToGeocodeResponse(t *testing.T) {
	raw := []maps.GeocodingResult{
		{
			PlaceID:          "abc",
			FormattedAddress: "Rua Cel. João Carlos, Pacatuba - CE",
			Geometry:         maps.AddressGeometry{Location: maps.LatLng{Lat: -3.98, Lng: -38.62}},
			Types:            []string{"street_address"},
		},
	}

	resp := toGeocodeResponse(raw)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, -3.98, resp.Results[0].Coordinates.Latitude)

	address, err := resp.FormattedAddress()
	require.NoError(t, err)
	assert.Equal(t, "Rua Cel. João Carlos, Pacatuba - CE", address)
}

func TestFormattedAddressEmpty(t *testing.T) {
	var nilResp *GeocodeResponse
	_, err := nilResp.FormattedAddress()
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = (&GeocodeResponse{}).FormattedAddress()
	assert.ErrorIs(t, err, ErrNoResults)
}
