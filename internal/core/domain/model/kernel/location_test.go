package kernel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

func TestNewLocation(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{name: "valid location", lat: 4.0511, lon: 9.7679},
		{name: "valid at min bounds", lat: kernel.LatitudeMin, lon: kernel.LongitudeMin},
		{name: "valid at max bounds", lat: kernel.LatitudeMax, lon: kernel.LongitudeMax},
		{name: "latitude too small", lat: -90.1, lon: 0, wantErr: true},
		{name: "latitude too large", lat: 90.1, lon: 0, wantErr: true},
		{name: "longitude too small", lat: 0, lon: -180.1, wantErr: true},
		{name: "longitude too large", lat: 0, lon: 180.1, wantErr: true},
		{name: "NaN latitude", lat: math.NaN(), lon: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := kernel.NewLocation(tt.lat, tt.lon)

			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
				assert.Zero(t, loc)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.lat, loc.Lat(), 1e-12)
			assert.InDelta(t, tt.lon, loc.Lon(), 1e-12)
			require.NoError(t, loc.Validate())
		})
	}
}

func TestLocation_Validate(t *testing.T) {
	var zero kernel.Location

	require.ErrorIs(t, zero.Validate(), kernel.ErrLocationIsNotConstructed)
}

func TestLocation_DistanceKm(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		a, _ := kernel.NewLocation(4.05, 9.70)

		d, err := a.DistanceKm(a)

		require.NoError(t, err)
		assert.InDelta(t, 0, d, 1e-9)
	})

	t.Run("one degree of latitude is about 111 km", func(t *testing.T) {
		a, _ := kernel.NewLocation(0, 0)
		b, _ := kernel.NewLocation(1, 0)

		d, err := a.DistanceKm(b)

		require.NoError(t, err)
		assert.InDelta(t, 111.19, d, 0.1)
	})

	t.Run("is symmetric", func(t *testing.T) {
		a, _ := kernel.NewLocation(4.0511, 9.7679)
		b, _ := kernel.NewLocation(3.8480, 11.5021)

		ab, _ := a.DistanceKm(b)
		ba, _ := b.DistanceKm(a)

		assert.InDelta(t, ab, ba, 1e-9)
	})

	t.Run("rejects zero value", func(t *testing.T) {
		a, _ := kernel.NewLocation(0, 0)

		_, err := a.DistanceKm(kernel.Location{})

		require.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)
	})
}

func TestLocation_BoundingBox(t *testing.T) {
	center, _ := kernel.NewLocation(4.05, 9.70)
	edge, _ := kernel.NewLocation(4.05+4.0/111.32, 9.70)

	minLat, maxLat, minLon, maxLon := center.BoundingBox(5)

	assert.Less(t, minLat, center.Lat())
	assert.Greater(t, maxLat, center.Lat())
	assert.Less(t, minLon, center.Lon())
	assert.Greater(t, maxLon, center.Lon())
	assert.GreaterOrEqual(t, maxLat, edge.Lat())
}
