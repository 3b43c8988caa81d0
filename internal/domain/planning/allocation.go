package planning

import (
	"sort"

	"github.com/kaitori/dispatch-go/internal/domain/catalog"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// fixedStoreScore is reported for allocations forced by a store-fixed product
const fixedStoreScore = 100

// StoreAllocation is one (store, quantity) draw toward an item's total
type StoreAllocation struct {
	StoreID int
	Qty     int
	Score   int
}

// ItemAllocation is the allocation result for a single order item.
// Invariant: sum of allocation quantities + Remaining == Total.
type ItemAllocation struct {
	ItemID      int
	Total       int
	Allocations []StoreAllocation
	Remaining   int
	NoProduct   bool // SKU had no product record (recoverable, item stays pending)
}

// Allocated returns the summed allocated quantity
func (a *ItemAllocation) Allocated() int {
	total := 0
	for _, alloc := range a.Allocations {
		total += alloc.Qty
	}
	return total
}

// Fulfilled reports whether the full requested quantity was covered
func (a *ItemAllocation) Fulfilled() bool {
	return a.Remaining == 0
}

// StoreIDs returns the distinct stores drawn from, in allocation order
func (a *ItemAllocation) StoreIDs() []int {
	ids := make([]int, 0, len(a.Allocations))
	for _, alloc := range a.Allocations {
		ids = append(ids, alloc.StoreID)
	}
	return ids
}

// AllocatableItem is the slice of an order item the allocator needs
type AllocatableItem struct {
	ItemID   int
	SKU      string
	Quantity int
}

// Catalog is the batched master data an allocation run works from.
// It is loaded with two bulk reads (products by SKU set, mappings by
// product-id set) plus one store lookup; the allocator itself never
// touches storage.
type Catalog struct {
	ProductsBySKU map[string]*catalog.Product
	Mappings      map[int][]*catalog.ProductStoreMapping // product_id -> active mappings
	Stores        map[int]*catalog.Store
}

// Allocator scores candidate stores per item and splits the requested
// quantity across them subject to per-store capacity.
type Allocator struct {
	catalog    *Catalog
	buyerStart *shared.Coordinate // when allocating for a specific buyer
}

func NewAllocator(data *Catalog) *Allocator {
	return &Allocator{catalog: data}
}

// NewAllocatorForBuyer additionally scores stores by distance from the
// buyer's start coordinate.
func NewAllocatorForBuyer(data *Catalog, start shared.Coordinate) *Allocator {
	return &Allocator{catalog: data, buyerStart: &start}
}

// Allocate resolves every item to zero or more store allocations.
// Items whose SKU has no product record come back with the full quantity
// remaining and NoProduct set; callers report the shortfall instead of
// failing the run.
func (al *Allocator) Allocate(items []AllocatableItem) map[int]*ItemAllocation {
	results := make(map[int]*ItemAllocation, len(items))
	for _, item := range items {
		results[item.ItemID] = al.allocateItem(item)
	}
	return results
}

func (al *Allocator) allocateItem(item AllocatableItem) *ItemAllocation {
	result := &ItemAllocation{ItemID: item.ItemID, Total: item.Quantity, Remaining: item.Quantity}

	product, ok := al.catalog.ProductsBySKU[item.SKU]
	if !ok {
		result.NoProduct = true
		return result
	}

	// Store-fixed products allocate the full quantity to their pinned store
	if product.IsStoreFixed && product.FixedStoreID != nil {
		result.Allocations = append(result.Allocations, StoreAllocation{
			StoreID: *product.FixedStoreID,
			Qty:     item.Quantity,
			Score:   fixedStoreScore,
		})
		result.Remaining = 0
		return result
	}

	candidates := al.scoreCandidates(product)
	for _, cand := range candidates {
		if result.Remaining == 0 {
			break
		}
		draw := cand.mapping.DailyCap(result.Remaining)
		if draw == 0 {
			continue
		}
		result.Allocations = append(result.Allocations, StoreAllocation{
			StoreID: cand.mapping.StoreID,
			Qty:     draw,
			Score:   cand.score,
		})
		result.Remaining -= draw
	}

	return result
}

type scoredCandidate struct {
	mapping *catalog.ProductStoreMapping
	score   int
}

// scoreCandidates ranks the product's active store mappings.
// Ties break on lower store id so allocation is deterministic.
func (al *Allocator) scoreCandidates(product *catalog.Product) []scoredCandidate {
	mappings := al.catalog.Mappings[product.ProductID]
	candidates := make([]scoredCandidate, 0, len(mappings))

	for _, m := range mappings {
		store, ok := al.catalog.Stores[m.StoreID]
		if !ok || !store.IsActive {
			continue
		}
		candidates = append(candidates, scoredCandidate{mapping: m, score: al.scoreMapping(m, store)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].mapping.StoreID < candidates[j].mapping.StoreID
	})
	return candidates
}

func (al *Allocator) scoreMapping(m *catalog.ProductStoreMapping, store *catalog.Store) int {
	score := 0

	switch m.StockStatus {
	case catalog.StockInStock:
		score += 100
	case catalog.StockLowStock:
		score += 50
	case catalog.StockUnknown:
		score += 25
		// out_of_stock and discontinued score 0
	}

	if store.PriorityLevel < 10 {
		score += (10 - store.PriorityLevel) * 5
	}
	if m.Priority > 0 && m.Priority < 10 {
		score += (10 - m.Priority) * 3
	}
	if m.IsPrimaryStore {
		score += 20
	}

	if al.buyerStart != nil && store.HasLocation() {
		switch dist := al.buyerStart.HaversineKm(*store.Location); {
		case dist < 1:
			score += 50
		case dist < 3:
			score += 30
		case dist < 5:
			score += 15
		case dist < 10:
			score += 5
		}
	}

	return score
}
