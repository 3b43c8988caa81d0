package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinate(t *testing.T) {
	coord, err := NewCoordinate(34.7025, 135.4959)
	require.NoError(t, err)
	assert.Equal(t, 34.7025, coord.Lat)

	_, err = NewCoordinate(91, 0)
	assert.Error(t, err)
	_, err = NewCoordinate(0, -181)
	assert.Error(t, err)
}

func TestHaversineKm(t *testing.T) {
	osaka := Coordinate{Lat: 34.6937, Lng: 135.5023}
	tokyo := Coordinate{Lat: 35.6762, Lng: 139.6503}

	dist := osaka.HaversineKm(tokyo)
	assert.InDelta(t, 397, dist, 5, "Osaka to Tokyo is roughly 400 km")
	assert.InDelta(t, dist, tokyo.HaversineKm(osaka), 1e-9, "symmetric")
	assert.Zero(t, osaka.HaversineKm(osaka))
}

func TestCentroid(t *testing.T) {
	empty := &Centroid{}
	_, ok := empty.Value()
	assert.False(t, ok)

	c := NewCentroid(Coordinate{Lat: 34.0, Lng: 135.0})
	c.Add(Coordinate{Lat: 36.0, Lng: 137.0})

	mean, ok := c.Value()
	require.True(t, ok)
	assert.InDelta(t, 35.0, mean.Lat, 1e-9)
	assert.InDelta(t, 136.0, mean.Lng, 1e-9)
	assert.Equal(t, 2, c.Count())
}

func TestMeanCoordinate(t *testing.T) {
	_, ok := MeanCoordinate(nil)
	assert.False(t, ok)

	mean, ok := MeanCoordinate([]Coordinate{
		{Lat: 34.0, Lng: 135.0},
		{Lat: 35.0, Lng: 136.0},
	})
	require.True(t, ok)
	assert.InDelta(t, 34.5, mean.Lat, 1e-9)
	assert.InDelta(t, 135.5, mean.Lng, 1e-9)
}
