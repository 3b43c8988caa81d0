package shared

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// Coordinate is an immutable latitude/longitude pair.
// Coordinates are stored as decimal(9,6) columns; in memory plain float64
// is precise enough for intra-city distances.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewCoordinate creates a coordinate with range validation
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	if lat < -90 || lat > 90 {
		return Coordinate{}, NewValidationError("lat", fmt.Sprintf("out of range: %f", lat))
	}
	if lng < -180 || lng > 180 {
		return Coordinate{}, NewValidationError("lng", fmt.Sprintf("out of range: %f", lng))
	}
	return Coordinate{Lat: lat, Lng: lng}, nil
}

// HaversineKm calculates the great-circle distance to another coordinate in km
func (c Coordinate) HaversineKm(other Coordinate) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - c.Lat) * math.Pi / 180
	dLng := (other.Lng - c.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// EuclideanTo returns the flat lat/lng-space distance to another coordinate.
// Used only for relative comparisons at intra-city scale (centroid affinity).
func (c Coordinate) EuclideanTo(other Coordinate) float64 {
	dLat := other.Lat - c.Lat
	dLng := other.Lng - c.Lng
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Lat, c.Lng)
}

// Centroid maintains an incremental mean of coordinates via (sum, count)
// accumulators so each update is O(1).
type Centroid struct {
	sumLat float64
	sumLng float64
	count  int
}

// NewCentroid creates a centroid seeded with an initial coordinate
func NewCentroid(initial Coordinate) *Centroid {
	c := &Centroid{}
	c.Add(initial)
	return c
}

// Add folds a coordinate into the running mean
func (c *Centroid) Add(coord Coordinate) {
	c.sumLat += coord.Lat
	c.sumLng += coord.Lng
	c.count++
}

// Value returns the current mean coordinate.
// Returns false when no coordinates have been added.
func (c *Centroid) Value() (Coordinate, bool) {
	if c.count == 0 {
		return Coordinate{}, false
	}
	return Coordinate{Lat: c.sumLat / float64(c.count), Lng: c.sumLng / float64(c.count)}, true
}

// Count returns how many coordinates have been folded in
func (c *Centroid) Count() int {
	return c.count
}

// MeanCoordinate averages a slice of coordinates.
// Returns false for an empty slice.
func MeanCoordinate(coords []Coordinate) (Coordinate, bool) {
	if len(coords) == 0 {
		return Coordinate{}, false
	}
	acc := &Centroid{}
	for _, c := range coords {
		acc.Add(c)
	}
	return acc.Value()
}
