package ordering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaitori/dispatch-go/internal/domain/catalog"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

func TestNewOrder(t *testing.T) {
	arrival := time.Date(2025, 7, 7, 3, 30, 0, 0, time.UTC)

	order, err := NewOrder("EXT-001", "online", "山田太郎", arrival)
	require.NoError(t, err)
	assert.Equal(t, OrderPending, order.Status)
	assert.Equal(t, arrival, order.OrderDate)
	assert.Nil(t, order.TargetPurchaseDate)

	_, err = NewOrder("", "online", "山田太郎", arrival)
	var validationErr *shared.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestOrder_ScheduleOnce(t *testing.T) {
	order, err := NewOrder("EXT-001", "online", "山田太郎", time.Now().UTC())
	require.NoError(t, err)

	target := time.Date(2025, 7, 8, 15, 0, 0, 0, time.UTC)
	require.NoError(t, order.Schedule(target))
	require.NotNil(t, order.TargetPurchaseDate)
	assert.Equal(t, time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC), *order.TargetPurchaseDate, "truncated to civil date")

	err = order.Schedule(target.AddDate(0, 0, 1))
	assert.Error(t, err, "target date assigned exactly once")
}

func TestOrder_PendingItemsExcludesBundlesAndAssigned(t *testing.T) {
	order, err := NewOrder("EXT-001", "online", "山田太郎", time.Now().UTC())
	require.NoError(t, err)

	plain, err := NewOrderItem("SKU-001", "単品", 1)
	require.NoError(t, err)
	bundle, err := NewOrderItem("SET-001", "セット", 1)
	require.NoError(t, err)
	bundle.IsBundle = true
	done, err := NewOrderItem("SKU-002", "割当済", 1)
	require.NoError(t, err)
	done.Status = ItemAssigned
	order.Items = []*OrderItem{plain, bundle, done}

	pending := order.PendingItems()
	require.Len(t, pending, 1)
	assert.Equal(t, "SKU-001", pending[0].SKU)
}

func TestNewOrderItem_Validation(t *testing.T) {
	_, err := NewOrderItem("", "名称", 1)
	assert.Error(t, err)

	_, err = NewOrderItem("SKU-001", "名称", 0)
	assert.Error(t, err)

	item, err := NewOrderItem("SKU-001", "名称", 3)
	require.NoError(t, err)
	assert.Equal(t, ItemPending, item.Status)
}

func TestExpandBundle(t *testing.T) {
	t.Run("non-bundle rejects expansion", func(t *testing.T) {
		item, err := NewOrderItem("SKU-001", "単品", 1)
		require.NoError(t, err)
		_, err = item.ExpandBundle(nil)
		assert.Error(t, err)
	})

	t.Run("bundle without split rule spawns nothing and leaves planning", func(t *testing.T) {
		item, err := NewOrderItem("SET-001", "セット", 2)
		require.NoError(t, err)
		item.IsBundle = true

		children, err := item.ExpandBundle(&catalog.Product{SKU: "SET-001"})
		require.NoError(t, err)
		assert.Nil(t, children)
		assert.Equal(t, ItemAssigned, item.Status)
	})

	t.Run("split rule multiplies component quantities", func(t *testing.T) {
		item, err := NewOrderItem("SET-001", "ギフトセット", 3)
		require.NoError(t, err)
		item.IsBundle = true
		item.ItemID = 42
		item.OrderID = 7

		product := &catalog.Product{
			SKU: "SET-001",
			SetSplitRule: []catalog.BundleComponent{
				{SKU: "SKU-A", QtyPerBundle: 2},
				{SKU: "SKU-B", QtyPerBundle: 1},
			},
		}

		children, err := item.ExpandBundle(product)
		require.NoError(t, err)
		require.Len(t, children, 2)

		assert.Equal(t, "SKU-A", children[0].SKU)
		assert.Equal(t, 6, children[0].Quantity)
		assert.Equal(t, "SKU-B", children[1].SKU)
		assert.Equal(t, 3, children[1].Quantity)
		for _, child := range children {
			assert.Equal(t, 7, child.OrderID)
			require.NotNil(t, child.ParentItemID)
			assert.Equal(t, 42, *child.ParentItemID)
			assert.Equal(t, ItemPending, child.Status)
		}
		assert.Equal(t, ItemAssigned, item.Status)
	})
}
