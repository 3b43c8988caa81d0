package routing

import (
	"time"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

const (
	// shoppingBaseMinutes + shoppingPerUnitMinutes × quantity is the
	// in-store time at each stop
	shoppingBaseMinutes    = 5
	shoppingPerUnitMinutes = 2
)

// ShoppingMinutes is the simulated in-store time for a stop
func ShoppingMinutes(totalQuantity int) int {
	return shoppingBaseMinutes + shoppingPerUnitMinutes*totalQuantity
}

// ScheduledStop is one stop with its simulated arrival estimate
type ScheduledStop struct {
	Plan             StopPlan
	Sequence         int // 1-based
	EstimatedArrival time.Time
	TravelMinutes    int
	WaitMinutes      int
	ShoppingMinutes  int
}

// Schedule is the simulated execution of an ordered tour
type Schedule struct {
	Stops                []ScheduledStop
	TotalDistanceKm      float64
	EstimatedTimeMinutes int // travel + wait + shopping
}

// Simulate walks an ordered tour from the start coordinate at the route
// start time, producing arrival estimates and route totals. Travel time
// uses the standard speed; arrival at a store before it opens waits until
// opening, and the wait counts toward the total. Stops without
// coordinates contribute shopping time but no travel.
func Simulate(matrix *Matrix, start shared.Coordinate, tour []StopPlan, date time.Time, startMinuteLocal int) *Schedule {
	schedule := &Schedule{}

	day := shared.DateOf(date)
	clock := time.Date(day.Year(), day.Month(), day.Day(),
		startMinuteLocal/60, startMinuteLocal%60, 0, 0, shared.JST)
	weekday := day.Weekday()

	current := start
	totalDistance := 0.0
	totalMinutes := 0

	for idx, stop := range tour {
		travelMinutes := 0
		if stop.Location != nil {
			var dist float64
			if matrix != nil && idx > 0 && tour[idx-1].Location != nil {
				dist = matrix.Between(tour[idx-1].StoreID, stop.StoreID)
			} else {
				dist = current.HaversineKm(*stop.Location)
			}
			totalDistance += dist
			travelMinutes = TravelMinutes(dist)
			clock = clock.Add(time.Duration(travelMinutes) * time.Minute)
			current = *stop.Location
		}

		waitMinutes := 0
		if opens, ok := stop.OpeningHours.OpensAt(weekday); ok {
			minuteOfDay := clock.Hour()*60 + clock.Minute()
			if opens > minuteOfDay {
				waitMinutes = opens - minuteOfDay
				clock = clock.Add(time.Duration(waitMinutes) * time.Minute)
			}
		}

		arrival := clock
		shopping := ShoppingMinutes(stop.TotalQuantity)
		clock = clock.Add(time.Duration(shopping) * time.Minute)
		totalMinutes += travelMinutes + waitMinutes + shopping

		schedule.Stops = append(schedule.Stops, ScheduledStop{
			Plan:             stop,
			Sequence:         idx + 1,
			EstimatedArrival: arrival,
			TravelMinutes:    travelMinutes,
			WaitMinutes:      waitMinutes,
			ShoppingMinutes:  shopping,
		})
	}

	schedule.TotalDistanceKm = round2(totalDistance)
	schedule.EstimatedTimeMinutes = totalMinutes
	return schedule
}
