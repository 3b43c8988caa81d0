package planning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaitori/dispatch-go/internal/adapters/persistence"
	"github.com/kaitori/dispatch-go/internal/infrastructure/logging"
	"github.com/kaitori/dispatch-go/test/helpers"
)

func TestPurchaseListsByDate(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	uow := persistence.NewGormUnitOfWork(db)

	store := helpers.SeedStore(t, db, "梅田店", 34.7025, 135.4959)
	product := helpers.SeedProduct(t, db, "SKU-001", "商品A")
	helpers.SeedMapping(t, db, product.ProductID, store.StoreID, 1)
	buyer := helpers.SeedBuyer(t, db, "佐藤", 10)
	order := helpers.SeedOrder(t, db, "EXT-001", planDate)
	helpers.SeedOrderItem(t, db, order.OrderID, "SKU-001", 1)

	_, err := NewAssignDayHandler(uow, logging.NewNop()).Handle(ctx, &AssignDayCommand{Date: planDate})
	require.NoError(t, err)

	result, err := NewPurchaseListsByDateHandler(uow).Handle(ctx, &PurchaseListsByDateQuery{Date: planDate})
	require.NoError(t, err)

	response := result.(*PurchaseListsByDateResponse)
	require.Len(t, response.Lists, 1)
	assert.Equal(t, buyer.StaffID, response.Lists[0].StaffID)
	assert.Len(t, response.Lists[0].Items, 1)

	// A different date has no lists
	other, err := NewPurchaseListsByDateHandler(uow).
		Handle(ctx, &PurchaseListsByDateQuery{Date: planDate.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Empty(t, other.(*PurchaseListsByDateResponse).Lists)
}
