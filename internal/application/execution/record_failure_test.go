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
	"github.com/kaitori/dispatch-go/internal/domain/execution"
	"github.com/kaitori/dispatch-go/internal/domain/ordering"
	"github.com/kaitori/dispatch-go/internal/domain/planning"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
	"github.com/kaitori/dispatch-go/internal/domain/staff"
	"github.com/kaitori/dispatch-go/internal/infrastructure/logging"
	"github.com/kaitori/dispatch-go/test/helpers"
)

// assignSingleTask seeds one order item and assigns it, returning the
// buyer and their buy task
func assignSingleTask(t *testing.T, db *gorm.DB) (*staff.Staff, *planning.PurchaseListItem) {
	t.Helper()
	ctx := context.Background()

	store := helpers.SeedStore(t, db, "梅田店", 34.7025, 135.4959)
	product := helpers.SeedProduct(t, db, "SKU-001", "商品A")
	helpers.SeedMapping(t, db, product.ProductID, store.StoreID, 1)
	buyer := helpers.SeedBuyer(t, db, "佐藤", 10)
	order := helpers.SeedOrder(t, db, "EXT-001", execDate)
	helpers.SeedOrderItem(t, db, order.OrderID, "SKU-001", 1)

	assigner := appplanning.NewAssignDayHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	_, err := assigner.Handle(ctx, &appplanning.AssignDayCommand{Date: execDate})
	require.NoError(t, err)

	list, err := persistence.NewRepositories(db).Lists.FindByStaffAndDate(ctx, buyer.StaffID, execDate)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Len(t, list.Items, 1)
	return buyer, list.Items[0]
}

func TestRecordFailure_FlipsTaskAndItem(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	buyer, task := assignSingleTask(t, db)

	handler := NewRecordFailureHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	result, err := handler.Handle(ctx, &RecordFailureCommand{
		ListItemID:   task.ListItemID,
		ActorStaffID: buyer.StaffID,
		FailureType:  execution.FailureOutOfStock,
		Note:         "棚に在庫なし",
	})
	require.NoError(t, err)

	response := result.(*RecordFailureResponse)
	assert.Equal(t, task.ListItemID, response.ListItemID)
	assert.Equal(t, task.ItemID, response.ItemID)

	repos := persistence.NewRepositories(db)

	saved, err := repos.Lists.FindItemByID(ctx, task.ListItemID)
	require.NoError(t, err)
	assert.Equal(t, planning.PurchaseFailed, saved.Status)

	items, err := repos.Orders.ListItemsByIDs(ctx, []int{task.ItemID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, ordering.ItemFailed, items[0].Status)

	// Failures are recorded at the wall-clock instant, not the plan date
	failures, err := repos.Failures.ListByStaffAndDate(ctx, buyer.StaffID, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, execution.FailureOutOfStock, failures[0].FailureType)
	assert.Equal(t, "棚に在庫なし", failures[0].Note)
}

func TestRecordFailure_OtherBuyerForbidden(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	_, task := assignSingleTask(t, db)
	intruder := helpers.SeedBuyer(t, db, "鈴木", 10)

	handler := NewRecordFailureHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	_, err := handler.Handle(ctx, &RecordFailureCommand{
		ListItemID:   task.ListItemID,
		ActorStaffID: intruder.StaffID,
		FailureType:  execution.FailureStoreClosed,
	})
	require.Error(t, err)

	var forbidden *shared.ForbiddenError
	assert.True(t, errors.As(err, &forbidden))
}

func TestRecordFailure_SupervisorAllowed(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	_, task := assignSingleTask(t, db)
	supervisor := helpers.SeedStaff(t, db, "上長", staff.RoleSupervisor)

	handler := NewRecordFailureHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	_, err := handler.Handle(ctx, &RecordFailureCommand{
		ListItemID:   task.ListItemID,
		ActorStaffID: supervisor.StaffID,
		FailureType:  execution.FailureDiscontinued,
	})
	require.NoError(t, err)
}

func TestRecordFailure_UnknownTask(t *testing.T) {
	db := helpers.NewTestDB(t)
	buyer := helpers.SeedBuyer(t, db, "佐藤", 10)

	handler := NewRecordFailureHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	_, err := handler.Handle(context.Background(), &RecordFailureCommand{
		ListItemID:   42,
		ActorStaffID: buyer.StaffID,
		FailureType:  execution.FailureOther,
	})
	require.Error(t, err)

	var notFound *shared.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}
