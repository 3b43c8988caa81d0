package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kaitori/dispatch-go/internal/adapters/persistence"
	"github.com/kaitori/dispatch-go/internal/domain/catalog"
	"github.com/kaitori/dispatch-go/internal/domain/ordering"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
	"github.com/kaitori/dispatch-go/internal/domain/staff"
)

// SeedStore persists an active store at the given coordinate
func SeedStore(t *testing.T, db *gorm.DB, name string, lat, lng float64) *catalog.Store {
	t.Helper()
	store, err := catalog.NewStore(name)
	require.NoError(t, err)
	store.Location = &shared.Coordinate{Lat: lat, Lng: lng}
	repo := persistence.NewGormStoreRepository(db)
	require.NoError(t, repo.Save(context.Background(), store))
	return store
}

// SeedStoreWithAddress persists an active store that has not been geocoded
func SeedStoreWithAddress(t *testing.T, db *gorm.DB, name, address string) *catalog.Store {
	t.Helper()
	store, err := catalog.NewStore(name)
	require.NoError(t, err)
	store.Address = address
	repo := persistence.NewGormStoreRepository(db)
	require.NoError(t, repo.Save(context.Background(), store))
	return store
}

// SeedProduct persists a product master record
func SeedProduct(t *testing.T, db *gorm.DB, sku, name string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(sku, name)
	require.NoError(t, err)
	repo := persistence.NewGormProductRepository(db)
	require.NoError(t, repo.Save(context.Background(), product))
	return product
}

// SeedMapping links a product to a store that stocks it
func SeedMapping(t *testing.T, db *gorm.DB, productID, storeID, priority int) *catalog.ProductStoreMapping {
	t.Helper()
	mapping := &catalog.ProductStoreMapping{
		ProductID:   productID,
		StoreID:     storeID,
		Priority:    priority,
		StockStatus: catalog.StockInStock,
	}
	repo := persistence.NewGormProductRepository(db)
	require.NoError(t, repo.SaveMapping(context.Background(), mapping))
	return mapping
}

// SeedCappedMapping links a product to a store with a per-day purchase cap
func SeedCappedMapping(t *testing.T, db *gorm.DB, productID, storeID, priority, dailyCap int) *catalog.ProductStoreMapping {
	t.Helper()
	mapping := &catalog.ProductStoreMapping{
		ProductID:        productID,
		StoreID:          storeID,
		Priority:         priority,
		StockStatus:      catalog.StockInStock,
		MaxDailyQuantity: &dailyCap,
	}
	repo := persistence.NewGormProductRepository(db)
	require.NoError(t, repo.SaveMapping(context.Background(), mapping))
	return mapping
}

// SeedBuyer persists an active buyer
func SeedBuyer(t *testing.T, db *gorm.DB, name string, capacity int) *staff.Staff {
	t.Helper()
	member, err := staff.NewStaff(name, staff.RoleBuyer, capacity)
	require.NoError(t, err)
	repo := persistence.NewGormStaffRepository(db)
	require.NoError(t, repo.Save(context.Background(), member))
	return member
}

// SeedStaff persists a staff member with an arbitrary role
func SeedStaff(t *testing.T, db *gorm.DB, name string, role staff.Role) *staff.Staff {
	t.Helper()
	member, err := staff.NewStaff(name, role, 10)
	require.NoError(t, err)
	repo := persistence.NewGormStaffRepository(db)
	require.NoError(t, repo.Save(context.Background(), member))
	return member
}

// SeedOrder persists an order scheduled for the given purchase date
func SeedOrder(t *testing.T, db *gorm.DB, externalID string, date time.Time) *ordering.Order {
	t.Helper()
	order, err := ordering.NewOrder(externalID, "online", "テスト顧客", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, order.Schedule(shared.DateOf(date)))
	repo := persistence.NewGormOrderRepository(db)
	require.NoError(t, repo.Save(context.Background(), order))
	return order
}

// SeedOrderItem persists one pending line on an order
func SeedOrderItem(t *testing.T, db *gorm.DB, orderID int, sku string, qty int) *ordering.OrderItem {
	t.Helper()
	item, err := ordering.NewOrderItem(sku, sku, qty)
	require.NoError(t, err)
	item.OrderID = orderID
	repo := persistence.NewGormOrderRepository(db)
	require.NoError(t, repo.SaveItem(context.Background(), item))
	return item
}

// SeedRule persists one business rule
func SeedRule(t *testing.T, db *gorm.DB, key, value string) {
	t.Helper()
	repo := persistence.NewGormPolicyRepository(db)
	require.NoError(t, repo.UpsertRule(context.Background(), key, value))
}
