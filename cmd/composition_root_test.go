package cmd

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInfrastructure() Infrastructure {
	return Infrastructure{
		Registerer: prometheus.NewRegistry(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestNewCompositionRoot_WithoutRouteService(t *testing.T) {
	// Given
	t.Setenv("ROUTE_SERVICE_URL", "")
	cfg := LoadConfig(viper.New())

	// When
	root, err := NewCompositionRoot(cfg, testInfrastructure())

	// Then
	require.NoError(t, err)
	assert.Nil(t, root.route)
	assert.NotNil(t, root.locker)
	assert.NotNil(t, root.fleet)
}

func TestNewCompositionRoot_WithRouteService(t *testing.T) {
	// Given
	t.Setenv("ROUTE_SERVICE_URL", "http://route.local")
	cfg := LoadConfig(viper.New())

	// When
	root, err := NewCompositionRoot(cfg, testInfrastructure())

	// Then
	require.NoError(t, err)
	assert.NotNil(t, root.route)
}

func TestNewCompositionRoot_InvalidRankWeightsStillStart(t *testing.T) {
	// Given
	t.Setenv("RANK_WEIGHT_DISTANCE", "2")
	cfg := LoadConfig(viper.New())

	// When
	root, err := NewCompositionRoot(cfg, testInfrastructure())

	// Then
	require.NoError(t, err)
	assert.False(t, root.matcher.UsesWeightedRanking())
}
