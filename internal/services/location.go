package services

import (
	"context"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
)

// LocationSource is the device-side location provider. The server never
// talks to the device directly, so the production implementation replays
// what the client reported in the request.
type LocationSource interface {
	RequestPermission(ctx context.Context) (models.PermissionStatus, error)
	CurrentFix(ctx context.Context) (models.Coordinates, error)
}

type reportedLocation struct {
	permission models.PermissionStatus
	latitude   *float64
	longitude  *float64
}

// NewReportedLocation adapts an emit request to a LocationSource.
func NewReportedLocation(req *models.EmitAlertRequest) LocationSource {
	if req == nil {
		return &reportedLocation{permission: models.PermissionUndetermined}
	}
	return &reportedLocation{
		permission: req.LocationPermission,
		latitude:   req.Latitude,
		longitude:  req.Longitude,
	}
}

func (l *reportedLocation) RequestPermission(context.Context) (models.PermissionStatus, error) {
	if l.permission == "" {
		return models.PermissionUndetermined, nil
	}
	return l.permission, nil
}

func (l *reportedLocation) CurrentFix(context.Context) (models.Coordinates, error) {
	if l.latitude == nil || l.longitude == nil {
		return models.Coordinates{}, ErrLocationUnavailable
	}

	fix := models.Coordinates{Latitude: *l.latitude, Longitude: *l.longitude}
	if !fix.Valid() {
		return models.Coordinates{}, ErrLocationUnavailable
	}
	return fix, nil
}
