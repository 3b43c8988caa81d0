package catalog

// StockStatus reflects a store's last known stock level for a product
type StockStatus string

const (
	StockInStock      StockStatus = "in_stock"
	StockLowStock     StockStatus = "low_stock"
	StockOutOfStock   StockStatus = "out_of_stock"
	StockDiscontinued StockStatus = "discontinued"
	StockUnknown      StockStatus = "unknown"
)

// Purchasable reports whether any quantity can be drawn from this status
func (s StockStatus) Purchasable() bool {
	return s != StockOutOfStock && s != StockDiscontinued
}

// ProductStoreMapping is the edge between a product and a store that
// stocks it. Unique per (product, store).
type ProductStoreMapping struct {
	MappingID        int
	ProductID        int
	StoreID          int
	IsPrimaryStore   bool
	Priority         int // 1 = preferred
	StockStatus      StockStatus
	MaxDailyQuantity *int // nil = unbounded
	CurrentAvailable *int // nil = unbounded; bounds a single-day allocation
}

// DailyCap returns the largest quantity one day's allocation may draw from
// this store. CurrentAvailable wins over MaxDailyQuantity; both absent
// means unbounded, expressed as the requested remainder.
func (m *ProductStoreMapping) DailyCap(remaining int) int {
	if !m.StockStatus.Purchasable() {
		return 0
	}
	if m.CurrentAvailable != nil {
		return min(*m.CurrentAvailable, remaining)
	}
	if m.MaxDailyQuantity != nil {
		return min(*m.MaxDailyQuantity, remaining)
	}
	return remaining
}
