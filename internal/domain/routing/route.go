package routing

import (
	"fmt"
	"time"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// RouteStatus tracks a route through execution
type RouteStatus string

const (
	RouteNotStarted RouteStatus = "not_started"
	RouteInProgress RouteStatus = "in_progress"
	RouteCompleted  RouteStatus = "completed"
	RouteCancelled  RouteStatus = "cancelled"
)

// StopStatus tracks one store visit
type StopStatus string

const (
	StopPending   StopStatus = "pending"
	StopCurrent   StopStatus = "current"
	StopCompleted StopStatus = "completed"
	StopSkipped   StopStatus = "skipped"
)

// RouteStop is one store visit within a route.
// StopSequence is 1-based, dense, strictly increasing.
type RouteStop struct {
	StopID           int
	RouteID          int
	StoreID          int
	StopSequence     int
	EstimatedArrival *time.Time
	ActualArrival    *time.Time
	ActualDeparture  *time.Time
	ItemsToPurchase  []int // order item ids covered at this stop
	ItemsCount       int   // quantity total
	Status           StopStatus
}

// Route is one buyer's ordered store-visit plan for a day, coupled to a
// purchase list.
//
// Invariants:
// - stop sequences are exactly 1..N
// - total distance is the sum of edge distances, 2-decimal rounded
// - include_return=false: the tour does not close back to start
type Route struct {
	RouteID              int
	ListID               int
	StaffID              int
	RouteDate            time.Time
	Status               RouteStatus
	TotalDistanceKm      float64
	EstimatedTimeMinutes int
	StartLocation        shared.Coordinate
	IncludeReturn        bool
	Stops                []*RouteStop
}

// NewRoute creates an unstarted route for a purchase list
func NewRoute(listID, staffID int, date time.Time, start shared.Coordinate) (*Route, error) {
	if listID <= 0 {
		return nil, shared.NewValidationError("list_id", "must be positive")
	}
	return &Route{
		ListID:        listID,
		StaffID:       staffID,
		RouteDate:     shared.DateOf(date),
		Status:        RouteNotStarted,
		StartLocation: start,
	}, nil
}

// Start moves the route into execution
func (r *Route) Start() error {
	if r.Status != RouteNotStarted {
		return shared.NewValidationError("route_status", fmt.Sprintf("cannot start route in status %s", r.Status))
	}
	r.Status = RouteInProgress
	return nil
}

// AllStopsCompleted reports whether every stop has been completed
func (r *Route) AllStopsCompleted() bool {
	if len(r.Stops) == 0 {
		return false
	}
	for _, stop := range r.Stops {
		if stop.Status != StopCompleted {
			return false
		}
	}
	return true
}

// StopByID finds a stop belonging to this route
func (r *Route) StopByID(stopID int) (*RouteStop, bool) {
	for _, stop := range r.Stops {
		if stop.StopID == stopID {
			return stop, true
		}
	}
	return nil, false
}

// ValidateSequences checks the dense 1..N stop sequence invariant
func (r *Route) ValidateSequences() error {
	seen := make(map[int]bool, len(r.Stops))
	for _, stop := range r.Stops {
		if stop.StopSequence < 1 || stop.StopSequence > len(r.Stops) {
			return shared.NewValidationError("stop_sequence", fmt.Sprintf("sequence %d out of range 1..%d", stop.StopSequence, len(r.Stops)))
		}
		if seen[stop.StopSequence] {
			return shared.NewValidationError("stop_sequence", fmt.Sprintf("duplicate sequence %d", stop.StopSequence))
		}
		seen[stop.StopSequence] = true
	}
	return nil
}

func (r *Route) String() string {
	return fmt.Sprintf("Route(%d staff=%d stops=%d status=%s)", r.RouteID, r.StaffID, len(r.Stops), r.Status)
}
