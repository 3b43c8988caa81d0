package planning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaitori/dispatch-go/internal/adapters/persistence"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
	"github.com/kaitori/dispatch-go/internal/domain/staff"
	"github.com/kaitori/dispatch-go/internal/infrastructure/logging"
	"github.com/kaitori/dispatch-go/test/helpers"
)

func TestAssignToStaff_FillsChosenBuyer(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()

	store := helpers.SeedStore(t, db, "梅田店", 34.7025, 135.4959)
	product := helpers.SeedProduct(t, db, "SKU-001", "商品A")
	helpers.SeedMapping(t, db, product.ProductID, store.StoreID, 1)
	buyer := helpers.SeedBuyer(t, db, "佐藤", 10)
	// A second buyer must not receive anything
	other := helpers.SeedBuyer(t, db, "田中", 10)
	order := helpers.SeedOrder(t, db, "EXT-001", planDate)
	helpers.SeedOrderItem(t, db, order.OrderID, "SKU-001", 2)

	handler := NewAssignToStaffHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	result, err := handler.Handle(ctx, &AssignToStaffCommand{StaffID: buyer.StaffID, Date: planDate})
	require.NoError(t, err)

	response := result.(*AssignToStaffResponse)
	assert.Equal(t, buyer.StaffID, response.StaffID)
	assert.Equal(t, 1, response.PlacedItems)
	assert.NotZero(t, response.ListID)

	repos := persistence.NewRepositories(db)
	list, err := repos.Lists.FindByStaffAndDate(ctx, buyer.StaffID, planDate)
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.Len(t, list.Items, 1)

	otherList, err := repos.Lists.FindByStaffAndDate(ctx, other.StaffID, planDate)
	require.NoError(t, err)
	assert.Nil(t, otherList)
}

func TestAssignToStaff_CapacityExhausted(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()

	store := helpers.SeedStore(t, db, "梅田店", 34.7025, 135.4959)
	product := helpers.SeedProduct(t, db, "SKU-001", "商品A")
	helpers.SeedMapping(t, db, product.ProductID, store.StoreID, 1)
	buyer := helpers.SeedBuyer(t, db, "佐藤", 1)

	first := helpers.SeedOrder(t, db, "EXT-001", planDate)
	helpers.SeedOrderItem(t, db, first.OrderID, "SKU-001", 1)
	second := helpers.SeedOrder(t, db, "EXT-002", planDate)
	skipped := helpers.SeedOrderItem(t, db, second.OrderID, "SKU-001", 1)

	handler := NewAssignToStaffHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())

	// First run fills the single capacity slot and skips the rest
	result, err := handler.Handle(ctx, &AssignToStaffCommand{StaffID: buyer.StaffID, Date: planDate})
	require.NoError(t, err)
	response := result.(*AssignToStaffResponse)
	assert.Equal(t, 1, response.PlacedItems)
	assert.Equal(t, []int{skipped.ItemID}, response.SkippedItems)

	// Second run finds the buyer already full
	_, err = handler.Handle(ctx, &AssignToStaffCommand{StaffID: buyer.StaffID, Date: planDate})
	require.Error(t, err)
	var capacityErr *shared.CapacityExhaustedError
	assert.True(t, errors.As(err, &capacityErr))
}

func TestAssignToStaff_RejectsNonBuyers(t *testing.T) {
	db := helpers.NewTestDB(t)
	supervisor := helpers.SeedStaff(t, db, "上長", staff.RoleSupervisor)

	handler := NewAssignToStaffHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	_, err := handler.Handle(context.Background(), &AssignToStaffCommand{StaffID: supervisor.StaffID, Date: planDate})
	require.Error(t, err)

	var policyErr *shared.PolicyError
	assert.True(t, errors.As(err, &policyErr))
}

func TestAssignToStaff_OffDutyBuyerFlipsToIdle(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()

	store := helpers.SeedStore(t, db, "梅田店", 34.7025, 135.4959)
	product := helpers.SeedProduct(t, db, "SKU-001", "商品A")
	helpers.SeedMapping(t, db, product.ProductID, store.StoreID, 1)
	buyer := helpers.SeedBuyer(t, db, "佐藤", 10)

	repos := persistence.NewRepositories(db)
	require.NoError(t, repos.Staff.UpdateStatus(ctx, buyer.StaffID, staff.StatusOffDuty))

	order := helpers.SeedOrder(t, db, "EXT-001", planDate)
	helpers.SeedOrderItem(t, db, order.OrderID, "SKU-001", 1)

	handler := NewAssignToStaffHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	result, err := handler.Handle(ctx, &AssignToStaffCommand{StaffID: buyer.StaffID, Date: planDate})
	require.NoError(t, err)
	assert.Equal(t, 1, result.(*AssignToStaffResponse).PlacedItems)

	member, err := repos.Staff.FindByID(ctx, buyer.StaffID)
	require.NoError(t, err)
	assert.Equal(t, staff.StatusIdle, member.Status)
}
