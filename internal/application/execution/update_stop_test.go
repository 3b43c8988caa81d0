package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kaitori/dispatch-go/internal/adapters/persistence"
	appplanning "github.com/kaitori/dispatch-go/internal/application/planning"
	"github.com/kaitori/dispatch-go/internal/domain/ordering"
	"github.com/kaitori/dispatch-go/internal/domain/planning"
	"github.com/kaitori/dispatch-go/internal/domain/routing"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
	"github.com/kaitori/dispatch-go/internal/domain/staff"
	"github.com/kaitori/dispatch-go/internal/infrastructure/logging"
	"github.com/kaitori/dispatch-go/test/helpers"
)

// Monday, a plain business day
var execDate = time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)

type executionFixture struct {
	buyer   *staff.Staff
	orderID int
	itemID  int
	routeID int
	stopID  int
}

// planSingleStopDay seeds one order item and runs the daily pipeline,
// returning the resulting route's only stop
func planSingleStopDay(t *testing.T, db *gorm.DB) executionFixture {
	t.Helper()
	ctx := context.Background()

	store := helpers.SeedStore(t, db, "梅田店", 34.7025, 135.4959)
	product := helpers.SeedProduct(t, db, "SKU-001", "商品A")
	helpers.SeedMapping(t, db, product.ProductID, store.StoreID, 1)
	buyer := helpers.SeedBuyer(t, db, "佐藤", 10)
	order := helpers.SeedOrder(t, db, "EXT-001", execDate)
	item := helpers.SeedOrderItem(t, db, order.OrderID, "SKU-001", 2)

	planner := appplanning.NewPlanDayHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	result, err := planner.Handle(ctx, &appplanning.PlanDayCommand{Date: execDate})
	require.NoError(t, err)
	response := result.(*appplanning.PlanDayResponse)
	require.Len(t, response.Routes, 1)

	route, err := persistence.NewRepositories(db).Routes.FindByID(ctx, response.Routes[0].RouteID)
	require.NoError(t, err)
	require.Len(t, route.Stops, 1)

	return executionFixture{
		buyer:   buyer,
		orderID: order.OrderID,
		itemID:  item.ItemID,
		routeID: route.RouteID,
		stopID:  route.Stops[0].StopID,
	}
}

func TestUpdateStop_CompletionCascades(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	fx := planSingleStopDay(t, db)

	arrival := time.Date(2025, 7, 7, 1, 30, 0, 0, time.UTC)
	handler := NewUpdateStopHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	result, err := handler.Handle(ctx, &UpdateStopCommand{
		RouteID:       fx.routeID,
		StopID:        fx.stopID,
		ActorStaffID:  fx.buyer.StaffID,
		Status:        routing.StopCompleted,
		ActualArrival: &arrival,
	})
	require.NoError(t, err)

	response := result.(*UpdateStopResponse)
	assert.True(t, response.RouteCompleted)
	assert.Equal(t, routing.RouteCompleted, response.RouteStatus)
	assert.Equal(t, "全店舗の買付が完了しました。お疲れさまでした", response.Message)

	repos := persistence.NewRepositories(db)

	route, err := repos.Routes.FindByID(ctx, fx.routeID)
	require.NoError(t, err)
	assert.Equal(t, routing.RouteCompleted, route.Status)
	require.NotNil(t, route.Stops[0].ActualArrival)

	list, err := repos.Lists.FindByStaffAndDate(ctx, fx.buyer.StaffID, execDate)
	require.NoError(t, err)
	assert.Equal(t, planning.ListCompleted, list.Status)
	assert.Equal(t, planning.PurchasePurchased, list.Items[0].Status)

	order, err := repos.Orders.FindByID(ctx, fx.orderID)
	require.NoError(t, err)
	assert.Equal(t, ordering.OrderCompleted, order.Status)
	assert.Equal(t, ordering.ItemPurchased, order.Items[0].Status)

	member, err := repos.Staff.FindByID(ctx, fx.buyer.StaffID)
	require.NoError(t, err)
	assert.Equal(t, staff.StatusIdle, member.Status)
}

func TestUpdateStop_PartialOrderMidRoute(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()

	umeda := helpers.SeedStore(t, db, "梅田店", 34.7025, 135.4959)
	namba := helpers.SeedStore(t, db, "難波店", 34.6659, 135.5013)
	productA := helpers.SeedProduct(t, db, "SKU-001", "商品A")
	productB := helpers.SeedProduct(t, db, "SKU-002", "商品B")
	helpers.SeedMapping(t, db, productA.ProductID, umeda.StoreID, 1)
	helpers.SeedMapping(t, db, productB.ProductID, namba.StoreID, 1)
	buyer := helpers.SeedBuyer(t, db, "佐藤", 10)
	order := helpers.SeedOrder(t, db, "EXT-001", execDate)
	helpers.SeedOrderItem(t, db, order.OrderID, "SKU-001", 1)
	helpers.SeedOrderItem(t, db, order.OrderID, "SKU-002", 1)

	planner := appplanning.NewPlanDayHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	planned, err := planner.Handle(ctx, &appplanning.PlanDayCommand{Date: execDate})
	require.NoError(t, err)
	require.Len(t, planned.(*appplanning.PlanDayResponse).Routes, 1)

	repos := persistence.NewRepositories(db)
	route, err := repos.Routes.FindByID(ctx, planned.(*appplanning.PlanDayResponse).Routes[0].RouteID)
	require.NoError(t, err)
	require.Len(t, route.Stops, 2)

	handler := NewUpdateStopHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())

	// First store bought, second still ahead
	_, err = handler.Handle(ctx, &UpdateStopCommand{
		RouteID:      route.RouteID,
		StopID:       route.Stops[0].StopID,
		ActorStaffID: buyer.StaffID,
		Status:       routing.StopCompleted,
	})
	require.NoError(t, err)

	saved, err := repos.Orders.FindByID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, ordering.OrderPartiallyCompleted, saved.Status)

	// Finishing the remaining stop completes the order
	_, err = handler.Handle(ctx, &UpdateStopCommand{
		RouteID:      route.RouteID,
		StopID:       route.Stops[1].StopID,
		ActorStaffID: buyer.StaffID,
		Status:       routing.StopCompleted,
	})
	require.NoError(t, err)

	saved, err = repos.Orders.FindByID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, ordering.OrderCompleted, saved.Status)
}

func TestUpdateStop_FirstActivityStartsRoute(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	fx := planSingleStopDay(t, db)

	handler := NewUpdateStopHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	result, err := handler.Handle(ctx, &UpdateStopCommand{
		RouteID:      fx.routeID,
		StopID:       fx.stopID,
		ActorStaffID: fx.buyer.StaffID,
		Status:       routing.StopCurrent,
	})
	require.NoError(t, err)

	response := result.(*UpdateStopResponse)
	assert.False(t, response.RouteCompleted)
	assert.Equal(t, routing.RouteInProgress, response.RouteStatus)

	repos := persistence.NewRepositories(db)
	member, err := repos.Staff.FindByID(ctx, fx.buyer.StaffID)
	require.NoError(t, err)
	assert.Equal(t, staff.StatusEnRoute, member.Status)

	list, err := repos.Lists.FindByStaffAndDate(ctx, fx.buyer.StaffID, execDate)
	require.NoError(t, err)
	assert.Equal(t, planning.ListInProgress, list.Status)
}

func TestUpdateStop_OtherBuyerForbidden(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	fx := planSingleStopDay(t, db)
	intruder := helpers.SeedBuyer(t, db, "鈴木", 10)

	handler := NewUpdateStopHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	_, err := handler.Handle(ctx, &UpdateStopCommand{
		RouteID:      fx.routeID,
		StopID:       fx.stopID,
		ActorStaffID: intruder.StaffID,
		Status:       routing.StopCompleted,
	})
	require.Error(t, err)

	var forbidden *shared.ForbiddenError
	assert.True(t, errors.As(err, &forbidden))
}

func TestUpdateStop_SupervisorMayUpdate(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	fx := planSingleStopDay(t, db)
	supervisor := helpers.SeedStaff(t, db, "上長", staff.RoleSupervisor)

	handler := NewUpdateStopHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	_, err := handler.Handle(ctx, &UpdateStopCommand{
		RouteID:      fx.routeID,
		StopID:       fx.stopID,
		ActorStaffID: supervisor.StaffID,
		Status:       routing.StopSkipped,
	})
	require.NoError(t, err)
}

func TestUpdateStop_UnknownStop(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	fx := planSingleStopDay(t, db)

	handler := NewUpdateStopHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	_, err := handler.Handle(ctx, &UpdateStopCommand{
		RouteID:      fx.routeID,
		StopID:       9999,
		ActorStaffID: fx.buyer.StaffID,
		Status:       routing.StopCompleted,
	})
	require.Error(t, err)

	var notFound *shared.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}
