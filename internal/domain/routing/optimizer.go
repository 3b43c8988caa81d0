package routing

import (
	"context"
	"time"

	"github.com/kaitori/dispatch-go/internal/domain/policy"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

const (
	// minImprovementKm is the smallest 2-opt gain worth applying
	minImprovementKm = 0.01
	// maxTwoOptPasses bounds the improvement loop
	maxTwoOptPasses = 50
	// maxWaitBeforeSwapMinutes: an opening-hours wait longer than this
	// makes a stop a swap candidate
	maxWaitBeforeSwapMinutes = 10
	// maxDetourKm bounds the extra distance an opening-hours swap may cost
	maxDetourKm = 2.0
)

// StopPlan is one store visit the optimizer orders
type StopPlan struct {
	StoreID       int
	Location      *shared.Coordinate
	OpeningHours  shared.WeeklyHours
	ItemIDs       []int
	TotalQuantity int
}

// Optimizer orders a buyer's stops: Nearest-Neighbor seed, 2-opt
// improvement, then an opening-hours swap pass when optimizing for speed.
// Stores without coordinates are deferred to the tail of the tour.
type Optimizer struct {
	matrix *Matrix
	start  shared.Coordinate
}

func NewOptimizer(matrix *Matrix, start shared.Coordinate) *Optimizer {
	return &Optimizer{matrix: matrix, start: start}
}

// Order returns the stops in visiting order. The context deadline is
// checked between 2-opt passes; on expiry the best tour so far is
// returned with the context error.
func (o *Optimizer) Order(
	ctx context.Context,
	stops []StopPlan,
	priority policy.OptimizationPriority,
	day time.Weekday,
	startMinuteLocal int,
) ([]StopPlan, error) {
	located, unlocated := splitByLocation(stops)
	if len(located) == 0 {
		return stops, nil
	}

	tour := o.nearestNeighbor(located)

	tour, err := o.twoOpt(ctx, tour)
	if err != nil {
		return append(tour, unlocated...), err
	}

	if priority == policy.PrioritySpeed {
		tour = o.openingHoursPass(tour, day, startMinuteLocal)
	}

	return append(tour, unlocated...), nil
}

func splitByLocation(stops []StopPlan) (located, unlocated []StopPlan) {
	for _, stop := range stops {
		if stop.Location != nil {
			located = append(located, stop)
		} else {
			unlocated = append(unlocated, stop)
		}
	}
	return located, unlocated
}

// nearestNeighbor greedily visits the closest unvisited store starting
// from the buyer's start coordinate.
func (o *Optimizer) nearestNeighbor(stops []StopPlan) []StopPlan {
	remaining := make([]StopPlan, len(stops))
	copy(remaining, stops)

	tour := make([]StopPlan, 0, len(stops))
	current := o.start

	for len(remaining) > 0 {
		nearestIdx := 0
		nearestDist := current.HaversineKm(*remaining[0].Location)
		for i := 1; i < len(remaining); i++ {
			if d := current.HaversineKm(*remaining[i].Location); d < nearestDist {
				nearestDist = d
				nearestIdx = i
			}
		}
		next := remaining[nearestIdx]
		remaining = append(remaining[:nearestIdx], remaining[nearestIdx+1:]...)
		tour = append(tour, next)
		current = *next.Location
	}

	return tour
}

// twoOpt repeatedly reverses tour segments while any reversal shortens the
// open tour by more than minImprovementKm. The tour does not return to
// start, so reversing a tail segment only changes its entry edge.
func (o *Optimizer) twoOpt(ctx context.Context, tour []StopPlan) ([]StopPlan, error) {
	if len(tour) < 3 {
		return tour, nil
	}

	for pass := 0; pass < maxTwoOptPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return tour, err
		}

		improved := false
		for i := 0; i < len(tour)-1; i++ {
			for j := i + 1; j < len(tour); j++ {
				if gain := o.reversalGain(tour, i, j); gain > minImprovementKm {
					reverse(tour, i, j)
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}

	return tour, nil
}

// reversalGain is the distance saved by reversing tour[i..j].
// Removed edges: (i-1, i) and (j, j+1); added: (i-1, j) and (i, j+1).
// The edge before index 0 comes from the start coordinate; there is no
// edge after the last stop.
func (o *Optimizer) reversalGain(tour []StopPlan, i, j int) float64 {
	entryOld := o.legDistance(tour, i-1, i)
	entryNew := o.legDistance(tour, i-1, j)

	var exitOld, exitNew float64
	if j+1 < len(tour) {
		exitOld = o.matrix.Between(tour[j].StoreID, tour[j+1].StoreID)
		exitNew = o.matrix.Between(tour[i].StoreID, tour[j+1].StoreID)
	}

	return (entryOld + exitOld) - (entryNew + exitNew)
}

// legDistance measures from the stop at prevIdx (or start when prevIdx<0)
// to the stop at toIdx.
func (o *Optimizer) legDistance(tour []StopPlan, prevIdx, toIdx int) float64 {
	if prevIdx < 0 {
		return o.start.HaversineKm(*tour[toIdx].Location)
	}
	return o.matrix.Between(tour[prevIdx].StoreID, tour[toIdx].StoreID)
}

func reverse(tour []StopPlan, i, j int) {
	for i < j {
		tour[i], tour[j] = tour[j], tour[i]
		i++
		j--
	}
}

// openingHoursPass trades a bounded detour for less idle waiting: walking
// the tour with simulated arrival times, a stop that would wait more than
// maxWaitBeforeSwapMinutes is swapped with its successor when the
// successor is already open at that arrival time and the detour costs
// less than maxDetourKm.
func (o *Optimizer) openingHoursPass(tour []StopPlan, day time.Weekday, startMinuteLocal int) []StopPlan {
	clock := startMinuteLocal

	for i := 0; i < len(tour); i++ {
		arrival := clock + TravelMinutes(o.legDistance(tour, i-1, i))

		if i+1 < len(tour) {
			if opens, ok := tour[i].OpeningHours.OpensAt(day); ok && opens-arrival > maxWaitBeforeSwapMinutes {
				if o.shouldSwapForward(tour, i, day, clock) {
					tour[i], tour[i+1] = tour[i+1], tour[i]
					arrival = clock + TravelMinutes(o.legDistance(tour, i-1, i))
				}
			}
		}

		// Advance the simulated clock through wait and shopping
		if opens, ok := tour[i].OpeningHours.OpensAt(day); ok && opens > arrival {
			arrival = opens
		}
		clock = arrival + ShoppingMinutes(tour[i].TotalQuantity)
	}

	return tour
}

// shouldSwapForward checks the two swap conditions for tour[i] and its
// successor: the successor must already be open at the swapped arrival
// time, and the reordered edges must cost less than maxDetourKm extra.
func (o *Optimizer) shouldSwapForward(tour []StopPlan, i int, day time.Weekday, clock int) bool {
	successor := tour[i+1]

	swappedArrival := clock + TravelMinutes(o.legDistance(tour, i-1, i+1))
	if opens, ok := successor.OpeningHours.OpensAt(day); ok && opens > swappedArrival {
		return false
	}

	oldDist := o.legDistance(tour, i-1, i) + o.matrix.Between(tour[i].StoreID, successor.StoreID)
	newDist := o.legDistance(tour, i-1, i+1) + o.matrix.Between(successor.StoreID, tour[i].StoreID)
	if i+2 < len(tour) {
		oldDist += o.matrix.Between(successor.StoreID, tour[i+2].StoreID)
		newDist += o.matrix.Between(tour[i].StoreID, tour[i+2].StoreID)
	}

	return newDist-oldDist < maxDetourKm
}
