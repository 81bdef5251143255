package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// LatitudeMin is the southernmost valid latitude in degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the northernmost valid latitude in degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the westernmost valid longitude in degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the easternmost valid longitude in degrees.
	LongitudeMax = 180.0

	// earthRadiusKm is the mean Earth radius used by the haversine formula.
	earthRadiusKm = 6371.0088
	// kmPerDegreeLatitude approximates the length of one degree of latitude.
	kmPerDegreeLatitude = 111.32
)

// ErrLocationIsNotConstructed is returned when attempting to use an improperly initialized Location.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location is a validated WGS84 point used for pickup, drop-off and courier positions.
// Location is an immutable value object; the zero value is invalid.
//
// Example:
//
//	pickup, err := kernel.NewLocation(4.0511, 9.7679) // Douala
//	if err != nil {
//	    return err
//	}
//	dropoff, _ := kernel.NewLocation(4.0611, 9.7861)
//	km, _ := pickup.DistanceKm(dropoff)
type Location struct { //nolint:recvcheck //using for validation
	lat   float64
	lon   float64
	guard guard.ConstructorGuard
}

// NewLocation creates a Location from latitude and longitude in degrees.
// Both values must be finite and inside their valid ranges.
func NewLocation(lat, lon float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLat(lat), loc.setLon(lon)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// Validate checks that the Location was created through NewLocation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Lat returns the latitude in degrees.
func (l Location) Lat() float64 {
	return l.lat
}

// Lon returns the longitude in degrees.
func (l Location) Lon() float64 {
	return l.lon
}

// String implements fmt.Stringer.
func (l Location) String() string {
	return fmt.Sprintf("Location(%.6f,%.6f)", l.lat, l.lon)
}

// IsEqual compares two locations. Both must be properly constructed.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l == other, nil
}

// DistanceKm returns the great-circle (haversine) distance in kilometres.
// It is the straight-line estimate used for ring searches and as the fallback
// when the route distance service is unavailable.
func (l Location) DistanceKm(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := degreesToRadians(l.lat)
	lat2 := degreesToRadians(other.lat)
	dLat := lat2 - lat1
	dLon := degreesToRadians(other.lon - l.lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c, nil
}

// BoundingBox returns the latitude/longitude window that contains every point
// within radiusKm. Repositories use it as a coarse index-friendly pre-filter
// before the exact DistanceKm check.
func (l Location) BoundingBox(radiusKm float64) (minLat, maxLat, minLon, maxLon float64) {
	dLat := radiusKm / kmPerDegreeLatitude
	cosLat := math.Cos(degreesToRadians(l.lat))
	dLon := 180.0
	if cosLat > 1e-9 {
		dLon = math.Min(radiusKm/(kmPerDegreeLatitude*cosLat), 180.0)
	}

	return math.Max(l.lat-dLat, LatitudeMin), math.Min(l.lat+dLat, LatitudeMax),
		math.Max(l.lon-dLon, LongitudeMin), math.Min(l.lon+dLon, LongitudeMax)
}

func (l *Location) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("lat", lat, LatitudeMin, LatitudeMax)
	}
	l.lat = lat
	return nil
}

func (l *Location) setLon(lon float64) error {
	if math.IsNaN(lon) || lon < LongitudeMin || lon > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("lon", lon, LongitudeMin, LongitudeMax)
	}
	l.lon = lon
	return nil
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}
