package ordering

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaitori/dispatch-go/internal/adapters/persistence"
	"github.com/kaitori/dispatch-go/internal/domain/catalog"
	"github.com/kaitori/dispatch-go/internal/domain/ordering"
	"github.com/kaitori/dispatch-go/internal/infrastructure/logging"
	"github.com/kaitori/dispatch-go/test/helpers"
)

// Monday 10:00 JST, well before the 13:10 cutoff
var mondayMorning = time.Date(2025, 7, 7, 1, 0, 0, 0, time.UTC)

func TestIngestOrder_SchedulesBeforeCutoff(t *testing.T) {
	db := helpers.NewTestDB(t)
	handler := NewIngestOrderHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())

	result, err := handler.Handle(context.Background(), &IngestOrderCommand{
		ExternalOrderID: "EXT-001",
		SourceChannel:   "online",
		CustomerName:    "山田太郎",
		ReceivedAt:      mondayMorning,
		Items: []IngestItemInput{
			{SKU: "SKU-001", ProductName: "商品A", Quantity: 2},
			{SKU: "SKU-002", ProductName: "商品B", Quantity: 1},
		},
	})
	require.NoError(t, err)

	response := result.(*IngestOrderResponse)
	assert.Equal(t, time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC), response.TargetPurchaseDate)
	assert.Equal(t, 2, response.ItemCount)
	assert.Zero(t, response.ExpandedChildren)

	order, err := persistence.NewGormOrderRepository(db).FindByID(context.Background(), response.OrderID)
	require.NoError(t, err)
	assert.Equal(t, ordering.OrderPending, order.Status)
	require.NotNil(t, order.TargetPurchaseDate)
	assert.Len(t, order.Items, 2)
}

func TestIngestOrder_AfterCutoffRollsForward(t *testing.T) {
	db := helpers.NewTestDB(t)
	handler := NewIngestOrderHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())

	// Monday 14:00 JST: past cutoff, lands on Tuesday
	result, err := handler.Handle(context.Background(), &IngestOrderCommand{
		ExternalOrderID: "EXT-002",
		SourceChannel:   "online",
		CustomerName:    "山田太郎",
		ReceivedAt:      time.Date(2025, 7, 7, 5, 0, 0, 0, time.UTC),
		Items:           []IngestItemInput{{SKU: "SKU-001", ProductName: "商品A", Quantity: 1}},
	})
	require.NoError(t, err)

	response := result.(*IngestOrderResponse)
	assert.Equal(t, time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC), response.TargetPurchaseDate)
}

func TestIngestOrder_ExpandsBundles(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()

	set := helpers.SeedProduct(t, db, "SET-001", "ギフトセット")
	set.SetSplitRule = []catalog.BundleComponent{
		{SKU: "SKU-A", QtyPerBundle: 2},
		{SKU: "SKU-B", QtyPerBundle: 1},
	}
	require.NoError(t, persistence.NewGormProductRepository(db).Save(ctx, set))

	handler := NewIngestOrderHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())
	result, err := handler.Handle(ctx, &IngestOrderCommand{
		ExternalOrderID: "EXT-003",
		SourceChannel:   "online",
		CustomerName:    "山田太郎",
		ReceivedAt:      mondayMorning,
		Items:           []IngestItemInput{{SKU: "SET-001", ProductName: "ギフトセット", Quantity: 3, IsBundle: true}},
	})
	require.NoError(t, err)

	response := result.(*IngestOrderResponse)
	assert.Equal(t, 2, response.ExpandedChildren)

	order, err := persistence.NewGormOrderRepository(db).FindByID(ctx, response.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 3, "bundle plus two children")

	quantities := map[string]int{}
	for _, item := range order.Items {
		if item.IsBundle {
			assert.Equal(t, ordering.ItemAssigned, item.Status, "bundle leaves planning")
			continue
		}
		quantities[item.SKU] = item.Quantity
	}
	assert.Equal(t, map[string]int{"SKU-A": 6, "SKU-B": 3}, quantities)
}

func TestIngestOrder_RejectsInvalidItems(t *testing.T) {
	db := helpers.NewTestDB(t)
	handler := NewIngestOrderHandler(persistence.NewGormUnitOfWork(db), logging.NewNop())

	_, err := handler.Handle(context.Background(), &IngestOrderCommand{
		ExternalOrderID: "EXT-004",
		SourceChannel:   "online",
		CustomerName:    "山田太郎",
		ReceivedAt:      mondayMorning,
		Items:           []IngestItemInput{{SKU: "", ProductName: "無名", Quantity: 1}},
	})
	assert.Error(t, err)
}
