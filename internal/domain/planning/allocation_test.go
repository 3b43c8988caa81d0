package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaitori/dispatch-go/internal/domain/catalog"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

func intPtr(v int) *int { return &v }

func activeStore(id int) *catalog.Store {
	return &catalog.Store{StoreID: id, StoreName: "店舗", IsActive: true}
}

func TestAllocate_NoProductRecord(t *testing.T) {
	allocator := NewAllocator(&Catalog{
		ProductsBySKU: map[string]*catalog.Product{},
	})

	results := allocator.Allocate([]AllocatableItem{{ItemID: 1, SKU: "GHOST-001", Quantity: 3}})

	result := results[1]
	assert.True(t, result.NoProduct)
	assert.Empty(t, result.Allocations)
	assert.Equal(t, 3, result.Remaining)
	assert.False(t, result.Fulfilled())
}

func TestAllocate_StoreFixedProduct(t *testing.T) {
	product, err := catalog.NewProduct("FIX-001", "店舗固定商品")
	require.NoError(t, err)
	product.ProductID = 1
	require.NoError(t, product.FixToStore(7))

	allocator := NewAllocator(&Catalog{
		ProductsBySKU: map[string]*catalog.Product{"FIX-001": product},
	})

	results := allocator.Allocate([]AllocatableItem{{ItemID: 5, SKU: "FIX-001", Quantity: 4}})

	result := results[5]
	require.Len(t, result.Allocations, 1)
	assert.Equal(t, 7, result.Allocations[0].StoreID)
	assert.Equal(t, 4, result.Allocations[0].Qty)
	assert.True(t, result.Fulfilled())
}

func TestAllocate_SplitsAcrossCappedStores(t *testing.T) {
	product := &catalog.Product{ProductID: 1, SKU: "SKU-001"}
	data := &Catalog{
		ProductsBySKU: map[string]*catalog.Product{"SKU-001": product},
		Mappings: map[int][]*catalog.ProductStoreMapping{
			1: {
				// Primary store can only cover part of the quantity
				{ProductID: 1, StoreID: 1, IsPrimaryStore: true, StockStatus: catalog.StockInStock, MaxDailyQuantity: intPtr(3)},
				{ProductID: 1, StoreID: 2, StockStatus: catalog.StockInStock},
			},
		},
		Stores: map[int]*catalog.Store{1: activeStore(1), 2: activeStore(2)},
	}

	results := NewAllocator(data).Allocate([]AllocatableItem{{ItemID: 1, SKU: "SKU-001", Quantity: 5}})

	result := results[1]
	require.Len(t, result.Allocations, 2)
	assert.Equal(t, 1, result.Allocations[0].StoreID)
	assert.Equal(t, 3, result.Allocations[0].Qty)
	assert.Equal(t, 2, result.Allocations[1].StoreID)
	assert.Equal(t, 2, result.Allocations[1].Qty)
	assert.Equal(t, result.Total, result.Allocated()+result.Remaining)
	assert.True(t, result.Fulfilled())
}

func TestAllocate_PartialWhenCapacityShort(t *testing.T) {
	product := &catalog.Product{ProductID: 1, SKU: "SKU-001"}
	data := &Catalog{
		ProductsBySKU: map[string]*catalog.Product{"SKU-001": product},
		Mappings: map[int][]*catalog.ProductStoreMapping{
			1: {
				{ProductID: 1, StoreID: 1, StockStatus: catalog.StockInStock, CurrentAvailable: intPtr(2)},
			},
		},
		Stores: map[int]*catalog.Store{1: activeStore(1)},
	}

	result := NewAllocator(data).Allocate([]AllocatableItem{{ItemID: 1, SKU: "SKU-001", Quantity: 6}})[1]

	assert.Equal(t, 2, result.Allocated())
	assert.Equal(t, 4, result.Remaining)
	assert.False(t, result.Fulfilled())
	assert.False(t, result.NoProduct)
}

func TestAllocate_SkipsUnpurchasableAndInactiveStores(t *testing.T) {
	product := &catalog.Product{ProductID: 1, SKU: "SKU-001"}
	inactive := activeStore(3)
	inactive.IsActive = false
	data := &Catalog{
		ProductsBySKU: map[string]*catalog.Product{"SKU-001": product},
		Mappings: map[int][]*catalog.ProductStoreMapping{
			1: {
				{ProductID: 1, StoreID: 1, StockStatus: catalog.StockOutOfStock},
				{ProductID: 1, StoreID: 2, StockStatus: catalog.StockDiscontinued},
				{ProductID: 1, StoreID: 3, StockStatus: catalog.StockInStock}, // inactive store
				{ProductID: 1, StoreID: 4, StockStatus: catalog.StockLowStock},
			},
		},
		Stores: map[int]*catalog.Store{
			1: activeStore(1), 2: activeStore(2), 3: inactive, 4: activeStore(4),
		},
	}

	result := NewAllocator(data).Allocate([]AllocatableItem{{ItemID: 1, SKU: "SKU-001", Quantity: 2}})[1]

	require.Len(t, result.Allocations, 1)
	assert.Equal(t, 4, result.Allocations[0].StoreID)
	assert.True(t, result.Fulfilled())
}

func TestAllocate_ScorePreferences(t *testing.T) {
	t.Run("stock status outranks mapping priority", func(t *testing.T) {
		product := &catalog.Product{ProductID: 1, SKU: "SKU-001"}
		data := &Catalog{
			ProductsBySKU: map[string]*catalog.Product{"SKU-001": product},
			Mappings: map[int][]*catalog.ProductStoreMapping{
				1: {
					{ProductID: 1, StoreID: 1, Priority: 1, StockStatus: catalog.StockUnknown},
					{ProductID: 1, StoreID: 2, StockStatus: catalog.StockInStock},
				},
			},
			Stores: map[int]*catalog.Store{1: activeStore(1), 2: activeStore(2)},
		}

		result := NewAllocator(data).Allocate([]AllocatableItem{{ItemID: 1, SKU: "SKU-001", Quantity: 1}})[1]
		assert.Equal(t, []int{2}, result.StoreIDs())
	})

	t.Run("equal scores break on lower store id", func(t *testing.T) {
		product := &catalog.Product{ProductID: 1, SKU: "SKU-001"}
		data := &Catalog{
			ProductsBySKU: map[string]*catalog.Product{"SKU-001": product},
			Mappings: map[int][]*catalog.ProductStoreMapping{
				1: {
					{ProductID: 1, StoreID: 9, StockStatus: catalog.StockInStock},
					{ProductID: 1, StoreID: 4, StockStatus: catalog.StockInStock},
				},
			},
			Stores: map[int]*catalog.Store{9: activeStore(9), 4: activeStore(4)},
		}

		result := NewAllocator(data).Allocate([]AllocatableItem{{ItemID: 1, SKU: "SKU-001", Quantity: 1}})[1]
		assert.Equal(t, []int{4}, result.StoreIDs())
	})

	t.Run("buyer proximity tips an otherwise even choice", func(t *testing.T) {
		product := &catalog.Product{ProductID: 1, SKU: "SKU-001"}
		near := activeStore(8)
		near.Location = &shared.Coordinate{Lat: 34.703, Lng: 135.496} // ~0km from buyer
		far := activeStore(2)
		far.Location = &shared.Coordinate{Lat: 34.85, Lng: 135.65} // >10km away
		data := &Catalog{
			ProductsBySKU: map[string]*catalog.Product{"SKU-001": product},
			Mappings: map[int][]*catalog.ProductStoreMapping{
				1: {
					{ProductID: 1, StoreID: 2, StockStatus: catalog.StockInStock},
					{ProductID: 1, StoreID: 8, StockStatus: catalog.StockInStock},
				},
			},
			Stores: map[int]*catalog.Store{2: far, 8: near},
		}

		buyerStart := shared.Coordinate{Lat: 34.7025, Lng: 135.4959}
		result := NewAllocatorForBuyer(data, buyerStart).Allocate(
			[]AllocatableItem{{ItemID: 1, SKU: "SKU-001", Quantity: 1}})[1]
		assert.Equal(t, []int{8}, result.StoreIDs())
	})
}
