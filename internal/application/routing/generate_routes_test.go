package routing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kaitori/dispatch-go/internal/adapters/persistence"
	"github.com/kaitori/dispatch-go/internal/domain/planning"
	"github.com/kaitori/dispatch-go/internal/infrastructure/logging"
	"github.com/kaitori/dispatch-go/test/helpers"
)

// Monday, a plain business day
var routeDate = time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)

// seedList creates an assigned purchase list with one buy task per
// (order item, store) pair
func seedList(t *testing.T, db *gorm.DB, staffID int, tasks []*planning.PurchaseListItem) *planning.PurchaseList {
	t.Helper()
	ctx := context.Background()
	repo := persistence.NewGormPurchaseListRepository(db)

	list, err := planning.NewPurchaseList(staffID, routeDate)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, list))

	for _, task := range tasks {
		_, err := list.Append(task.ItemID, task.StoreID, task.QuantityToPurchase)
		require.NoError(t, err)
	}
	require.NoError(t, repo.AppendItems(ctx, list.ListID, list.Items))
	list.RecountTotals()
	require.NoError(t, repo.UpdateTotals(ctx, list))
	list.Status = planning.ListAssigned
	require.NoError(t, repo.UpdateStatus(ctx, list.ListID, planning.ListAssigned))
	return list
}

func TestGenerateRoutes_OrdersStopsByProximity(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()

	// Office sits in Umeda; the near store must come first
	near := helpers.SeedStore(t, db, "梅田店", 34.7050, 135.4970)
	far := helpers.SeedStore(t, db, "難波店", 34.6659, 135.5013)
	buyer := helpers.SeedBuyer(t, db, "佐藤", 10)

	seedList(t, db, buyer.StaffID, []*planning.PurchaseListItem{
		{ItemID: 1, StoreID: far.StoreID, QuantityToPurchase: 1},
		{ItemID: 2, StoreID: near.StoreID, QuantityToPurchase: 2},
	})

	handler := NewGenerateRoutesHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	result, err := handler.Handle(ctx, &GenerateRoutesCommand{Date: routeDate})
	require.NoError(t, err)

	response := result.(*GenerateRoutesResponse)
	require.Len(t, response.Routes, 1)
	summary := response.Routes[0]
	assert.Equal(t, 2, summary.Stops)
	assert.Greater(t, summary.TotalDistanceKm, 0.0)
	assert.Greater(t, summary.EstimatedTimeMinutes, 0)

	route, err := persistence.NewRepositories(db).Routes.FindByID(ctx, summary.RouteID)
	require.NoError(t, err)
	require.Len(t, route.Stops, 2)
	assert.Equal(t, near.StoreID, route.Stops[0].StoreID)
	assert.Equal(t, far.StoreID, route.Stops[1].StoreID)
	assert.Equal(t, 1, route.Stops[0].StopSequence)
	assert.Equal(t, 2, route.Stops[1].StopSequence)
}

func TestGenerateRoutes_RegenerationKeepsRouteID(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()

	store := helpers.SeedStore(t, db, "梅田店", 34.7025, 135.4959)
	buyer := helpers.SeedBuyer(t, db, "佐藤", 10)
	seedList(t, db, buyer.StaffID, []*planning.PurchaseListItem{
		{ItemID: 1, StoreID: store.StoreID, QuantityToPurchase: 1},
	})

	handler := NewGenerateRoutesHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())

	first, err := handler.Handle(ctx, &GenerateRoutesCommand{Date: routeDate})
	require.NoError(t, err)
	second, err := handler.Handle(ctx, &GenerateRoutesCommand{Date: routeDate})
	require.NoError(t, err)

	firstID := first.(*GenerateRoutesResponse).Routes[0].RouteID
	secondID := second.(*GenerateRoutesResponse).Routes[0].RouteID
	assert.Equal(t, firstID, secondID, "route row survives regeneration")

	route, err := persistence.NewRepositories(db).Routes.FindByID(ctx, firstID)
	require.NoError(t, err)
	assert.Len(t, route.Stops, 1, "stops replaced, not duplicated")
}

func TestGenerateRoutes_SkipsFinishedTasks(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()

	open := helpers.SeedStore(t, db, "梅田店", 34.7025, 135.4959)
	done := helpers.SeedStore(t, db, "難波店", 34.6659, 135.5013)
	buyer := helpers.SeedBuyer(t, db, "佐藤", 10)

	list := seedList(t, db, buyer.StaffID, []*planning.PurchaseListItem{
		{ItemID: 1, StoreID: open.StoreID, QuantityToPurchase: 1},
		{ItemID: 2, StoreID: done.StoreID, QuantityToPurchase: 1},
	})
	repo := persistence.NewGormPurchaseListRepository(db)
	require.NoError(t, repo.UpdateItemStatus(ctx, list.Items[1].ListItemID, planning.PurchasePurchased))

	handler := NewGenerateRoutesHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	result, err := handler.Handle(ctx, &GenerateRoutesCommand{Date: routeDate})
	require.NoError(t, err)

	response := result.(*GenerateRoutesResponse)
	require.Len(t, response.Routes, 1)
	assert.Equal(t, 1, response.Routes[0].Stops)

	route, err := persistence.NewRepositories(db).Routes.FindByID(ctx, response.Routes[0].RouteID)
	require.NoError(t, err)
	require.Len(t, route.Stops, 1)
	assert.Equal(t, open.StoreID, route.Stops[0].StoreID)
}

func TestGenerateRoutes_UngeoStoreRoutedLast(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()

	located := helpers.SeedStore(t, db, "梅田店", 34.7025, 135.4959)
	pending := helpers.SeedStoreWithAddress(t, db, "新店舗", "大阪市北区角田町1-1")
	buyer := helpers.SeedBuyer(t, db, "佐藤", 10)

	seedList(t, db, buyer.StaffID, []*planning.PurchaseListItem{
		{ItemID: 1, StoreID: pending.StoreID, QuantityToPurchase: 1},
		{ItemID: 2, StoreID: located.StoreID, QuantityToPurchase: 1},
	})

	handler := NewGenerateRoutesHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	result, err := handler.Handle(ctx, &GenerateRoutesCommand{Date: routeDate})
	require.NoError(t, err)

	summary := result.(*GenerateRoutesResponse).Routes[0]
	route, err := persistence.NewRepositories(db).Routes.FindByID(ctx, summary.RouteID)
	require.NoError(t, err)
	require.Len(t, route.Stops, 2)
	assert.Equal(t, located.StoreID, route.Stops[0].StoreID)
	assert.Equal(t, pending.StoreID, route.Stops[1].StoreID)
}
