package planning

import (
	"sort"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// overlapBonus halves a buyer's distance score when they already visit a
// store in the item's allocation set.
const overlapBonus = 0.5

// BuyerState is the assigner's running view of one buyer
type BuyerState struct {
	StaffID     int
	Capacity    int
	Load        int // existing + newly placed buy tasks for the date
	start       shared.Coordinate
	centroid    *shared.Centroid
	visited     map[int]struct{}
	Assignments []StoreAllocation // per item placements, in placement order
}

// NewBuyerState seeds a buyer with their start coordinate and current load
func NewBuyerState(staffID, capacity, currentLoad int, start shared.Coordinate) *BuyerState {
	return &BuyerState{
		StaffID:  staffID,
		Capacity: capacity,
		Load:     currentLoad,
		start:    start,
		centroid: &shared.Centroid{},
		visited:  make(map[int]struct{}),
	}
}

// Centroid returns the mean coordinate of the buyer's visited stores,
// falling back to the start point while the list is empty.
func (b *BuyerState) Centroid() shared.Coordinate {
	if value, ok := b.centroid.Value(); ok {
		return value
	}
	return b.start
}

// Visits reports whether the buyer already stops at the store
func (b *BuyerState) Visits(storeID int) bool {
	_, ok := b.visited[storeID]
	return ok
}

// place records an item's allocations against this buyer
func (b *BuyerState) place(allocations []StoreAllocation, storeLocations map[int]shared.Coordinate) {
	for _, alloc := range allocations {
		b.Load++
		if _, seen := b.visited[alloc.StoreID]; seen {
			continue
		}
		b.visited[alloc.StoreID] = struct{}{}
		if loc, ok := storeLocations[alloc.StoreID]; ok {
			b.centroid.Add(loc)
		}
	}
}

// PlacedItem is an item routed to a specific buyer. Remaining carries
// the unallocatable remainder when store capacity fell short.
type PlacedItem struct {
	ItemID      int
	StaffID     int
	Allocations []StoreAllocation
	Remaining   int
}

// AssignmentResult is the outcome of one assignment run
type AssignmentResult struct {
	Placed  []PlacedItem
	Skipped []int // item ids no buyer had capacity for
}

// Assigner packs allocated items into per-buyer workloads keeping each
// buyer's stops spatially clustered.
type Assigner struct {
	buyers         []*BuyerState
	storeLocations map[int]shared.Coordinate
	cityCenter     shared.Coordinate
}

func NewAssigner(buyers []*BuyerState, storeLocations map[int]shared.Coordinate, cityCenter shared.Coordinate) *Assigner {
	return &Assigner{buyers: buyers, storeLocations: storeLocations, cityCenter: cityCenter}
}

// Assign places each item with the closest-centroid buyer that has
// capacity for all of the item's allocations. Ties break on lower staff
// id so repeated runs converge to the same assignment.
func (a *Assigner) Assign(items []*ItemAllocation) *AssignmentResult {
	result := &AssignmentResult{}

	for _, item := range items {
		if len(item.Allocations) == 0 {
			result.Skipped = append(result.Skipped, item.ItemID)
			continue
		}

		buyer := a.chooseBuyer(item)
		if buyer == nil {
			result.Skipped = append(result.Skipped, item.ItemID)
			continue
		}

		buyer.place(item.Allocations, a.storeLocations)
		result.Placed = append(result.Placed, PlacedItem{
			ItemID:      item.ItemID,
			StaffID:     buyer.StaffID,
			Allocations: item.Allocations,
			Remaining:   item.Remaining,
		})
	}

	return result
}

func (a *Assigner) chooseBuyer(item *ItemAllocation) *BuyerState {
	itemCentroid := a.itemCentroid(item)

	type scored struct {
		buyer *BuyerState
		score float64
	}
	candidates := make([]scored, 0, len(a.buyers))

	for _, buyer := range a.buyers {
		if buyer.Load+len(item.Allocations) > buyer.Capacity {
			continue
		}
		score := buyer.Centroid().EuclideanTo(itemCentroid)
		for _, alloc := range item.Allocations {
			if buyer.Visits(alloc.StoreID) {
				score *= overlapBonus
				break
			}
		}
		candidates = append(candidates, scored{buyer: buyer, score: score})
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		return candidates[i].buyer.StaffID < candidates[j].buyer.StaffID
	})
	return candidates[0].buyer
}

// itemCentroid averages the allocated stores' coordinates, falling back
// to the configured city center when none are geocoded.
func (a *Assigner) itemCentroid(item *ItemAllocation) shared.Coordinate {
	coords := make([]shared.Coordinate, 0, len(item.Allocations))
	for _, alloc := range item.Allocations {
		if loc, ok := a.storeLocations[alloc.StoreID]; ok {
			coords = append(coords, loc)
		}
	}
	if mean, ok := shared.MeanCoordinate(coords); ok {
		return mean
	}
	return a.cityCenter
}
