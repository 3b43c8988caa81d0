package policy

import (
	"time"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// OptimizationPriority selects what the route optimizer favors
type OptimizationPriority string

const (
	PrioritySpeed    OptimizationPriority = "speed"
	PriorityDistance OptimizationPriority = "distance"
	PriorityBalanced OptimizationPriority = "balanced"
)

// Holiday is a calendar override. IsWorking=true makes the date a business
// day even when the global holiday policy would skip it.
type Holiday struct {
	HolidayID int
	Date      time.Time // civil date, midnight UTC
	Name      string
	IsWorking bool
}

// Snapshot is the business-rule state read once at the start of a planning
// transaction. Rules are never consulted again mid-plan.
type Snapshot struct {
	CutoffMinute         int // minutes since midnight, local time
	WeekendProcessing    bool
	HolidayOverride      bool
	DefaultStartLocation shared.Coordinate
	MaxOrdersPerStaff    int
	AutoAssign           bool
	OptimizationPriority OptimizationPriority
	MaxRouteTimeHours    int
	IncludeReturn        bool
	RouteStartMinute     int // minutes since midnight, local time

	holidays map[time.Time]Holiday
}

// Default cutoff is 13:10 local, routes start 10:00 local, office in Osaka.
func DefaultSnapshot() *Snapshot {
	return &Snapshot{
		CutoffMinute:         13*60 + 10,
		WeekendProcessing:    false,
		HolidayOverride:      false,
		DefaultStartLocation: shared.Coordinate{Lat: 34.7025, Lng: 135.4959},
		MaxOrdersPerStaff:    20,
		AutoAssign:           false,
		OptimizationPriority: PrioritySpeed,
		MaxRouteTimeHours:    8,
		IncludeReturn:        false,
		RouteStartMinute:     10 * 60,
	}
}

// WithHolidays attaches the holiday calendar to the snapshot
func (s *Snapshot) WithHolidays(holidays []Holiday) *Snapshot {
	s.holidays = make(map[time.Time]Holiday, len(holidays))
	for _, h := range holidays {
		s.holidays[shared.DateOf(h.Date)] = h
	}
	return s
}

// HolidayOn returns the holiday record for a date, if any
func (s *Snapshot) HolidayOn(date time.Time) (Holiday, bool) {
	h, ok := s.holidays[shared.DateOf(date)]
	return h, ok
}
