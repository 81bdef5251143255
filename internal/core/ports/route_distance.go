package ports

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
)

// ErrRouteUnavailable means the routing service could not answer. Callers
// fall back to the straight-line estimate.
var ErrRouteUnavailable = errors.New("route unavailable")

// RouteDistance returns the road distance between two points.
type RouteDistance interface {
	DistanceKm(ctx context.Context, pickup, dropoff kernel.Location) (float64, error)
}
