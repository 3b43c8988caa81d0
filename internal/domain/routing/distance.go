package routing

import (
	"math"
	"time"

	"github.com/kaitori/dispatch-go/internal/domain/catalog"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// averageSpeedKmh is the urban travel speed every travel-time derivation
// uses. 25 km/h ≈ 2.4 min/km.
const averageSpeedKmh = 25.0

// TravelMinutes converts a distance to whole minutes at the standard speed
func TravelMinutes(distanceKm float64) int {
	return int(math.Round(distanceKm / averageSpeedKmh * 60))
}

// Edge is one directional pre-computed store-to-store distance
type Edge struct {
	FromStoreID       int
	ToStoreID         int
	DistanceKm        float64
	TravelTimeMinutes int
	LastCalculated    time.Time
}

// Matrix is a cached pairwise distance lookup over a set of stores.
// Absence of a pair falls back to on-the-fly haversine, so correctness
// never depends on pre-computation.
type Matrix struct {
	edges     map[[2]int]Edge
	locations map[int]shared.Coordinate
}

// NewMatrix builds a lookup from cached edges and known store locations
func NewMatrix(edges []Edge, locations map[int]shared.Coordinate) *Matrix {
	m := &Matrix{
		edges:     make(map[[2]int]Edge, len(edges)),
		locations: locations,
	}
	for _, e := range edges {
		m.edges[[2]int{e.FromStoreID, e.ToStoreID}] = e
	}
	return m
}

// Between returns the distance in km between two stores.
// Prefers the cached edge; falls back to haversine; returns 0 when either
// store has no known location.
func (m *Matrix) Between(fromStoreID, toStoreID int) float64 {
	if fromStoreID == toStoreID {
		return 0
	}
	if edge, ok := m.edges[[2]int{fromStoreID, toStoreID}]; ok {
		return edge.DistanceKm
	}
	from, okFrom := m.locations[fromStoreID]
	to, okTo := m.locations[toStoreID]
	if !okFrom || !okTo {
		return 0
	}
	return from.HaversineKm(to)
}

// FromPoint returns the distance from an arbitrary coordinate to a store
func (m *Matrix) FromPoint(point shared.Coordinate, storeID int) float64 {
	loc, ok := m.locations[storeID]
	if !ok {
		return 0
	}
	return point.HaversineKm(loc)
}

// Location returns a store's coordinate if known
func (m *Matrix) Location(storeID int) (shared.Coordinate, bool) {
	loc, ok := m.locations[storeID]
	return loc, ok
}

// ComputeAllPairs produces directional edges for every ordered pair of
// geo-located active stores, with travel time at the standard speed.
// Feeds the matrix recompute upsert.
func ComputeAllPairs(stores []*catalog.Store, now time.Time) []Edge {
	located := make([]*catalog.Store, 0, len(stores))
	for _, s := range stores {
		if s.IsActive && s.HasLocation() {
			located = append(located, s)
		}
	}

	var edges []Edge
	for _, from := range located {
		for _, to := range located {
			if from.StoreID == to.StoreID {
				continue
			}
			dist := round2(from.Location.HaversineKm(*to.Location))
			edges = append(edges, Edge{
				FromStoreID:       from.StoreID,
				ToStoreID:         to.StoreID,
				DistanceKm:        dist,
				TravelTimeMinutes: TravelMinutes(dist),
				LastCalculated:    now,
			})
		}
	}
	return edges
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
