package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheelsup-backend-go/internal/models"
)

func TestHaversineKm(t *testing.T) {
	gate1 := models.LatLng{Lat: 17.4401, Lng: 78.3489}
	banjara := models.LatLng{Lat: 17.4162, Lng: 78.4457}

	assert.InDelta(t, 10.6, HaversineKm(gate1, banjara), 0.2)
	assert.Zero(t, HaversineKm(gate1, gate1))
	assert.InDelta(t, HaversineKm(gate1, banjara)/kmPerMile, DistanceMiles(gate1, banjara), 1e-9)
}

func TestStraightLine_SetRouteAndDispose(t *testing.T) {
	r := NewStraightLine(4)
	origin := models.LatLng{Lat: 17.0, Lng: 78.0}
	dest := models.LatLng{Lat: 18.0, Lng: 79.0}

	_, ok := r.Route()
	assert.False(t, ok)

	require.NoError(t, r.SetRoute(origin, dest))
	got, ok := r.Route()
	require.True(t, ok)
	require.Len(t, got.Points, 5)
	assert.Equal(t, origin, got.Points[0])
	assert.Equal(t, dest, got.Points[4])
	assert.InDelta(t, 17.5, got.Points[2].Lat, 1e-9)
	assert.Greater(t, got.DistanceMiles, 0.0)

	r.Dispose()
	_, ok = r.Route()
	assert.False(t, ok)
	assert.ErrorIs(t, r.SetRoute(origin, dest), ErrDisposed)
}

var _ Renderer = (*StraightLine)(nil)
