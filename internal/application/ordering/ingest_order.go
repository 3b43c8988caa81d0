package ordering

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kaitori/dispatch-go/internal/application/common"
	"github.com/kaitori/dispatch-go/internal/domain/catalog"
	"github.com/kaitori/dispatch-go/internal/domain/ordering"
	"github.com/kaitori/dispatch-go/internal/domain/policy"
)

// IngestItemInput is one order line as received from the sales channel
type IngestItemInput struct {
	SKU         string
	ProductName string
	Quantity    int
	UnitPrice   *decimal.Decimal
	IsBundle    bool
	Priority    string
}

// IngestOrderCommand registers an external order and schedules its
// target purchase date
type IngestOrderCommand struct {
	ExternalOrderID string
	SourceChannel   string
	CustomerName    string
	ReceivedAt      time.Time // UTC arrival instant; zero means now
	Items           []IngestItemInput
}

// IngestOrderResponse reports the scheduled order
type IngestOrderResponse struct {
	OrderID            int
	TargetPurchaseDate time.Time
	ItemCount          int
	ExpandedChildren   int
}

// IngestOrderHandler creates the order, applies the cutoff rule and
// expands bundle lines into purchasable children
type IngestOrderHandler struct {
	uow    common.UnitOfWork
	logger *zap.SugaredLogger
}

func NewIngestOrderHandler(uow common.UnitOfWork, logger *zap.SugaredLogger) *IngestOrderHandler {
	return &IngestOrderHandler{uow: uow, logger: logger}
}

func (h *IngestOrderHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*IngestOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *IngestOrderCommand")
	}

	var response *IngestOrderResponse
	err := h.uow.Execute(ctx, func(ctx context.Context, repos *common.Repositories) error {
		snapshot, err := common.LoadPolicy(ctx, repos)
		if err != nil {
			return err
		}

		arrival := cmd.ReceivedAt
		if arrival.IsZero() {
			arrival = time.Now().UTC()
		}

		targetDate, err := policy.NewCutoffScheduler(snapshot).TargetDate(arrival)
		if err != nil {
			return err
		}

		order, err := ordering.NewOrder(cmd.ExternalOrderID, cmd.SourceChannel, cmd.CustomerName, arrival)
		if err != nil {
			return err
		}
		if err := order.Schedule(targetDate); err != nil {
			return err
		}
		if err := repos.Orders.Save(ctx, order); err != nil {
			return fmt.Errorf("failed to save order %s: %w", cmd.ExternalOrderID, err)
		}

		items := make([]*ordering.OrderItem, 0, len(cmd.Items))
		for _, input := range cmd.Items {
			item, err := ordering.NewOrderItem(input.SKU, input.ProductName, input.Quantity)
			if err != nil {
				return err
			}
			item.OrderID = order.OrderID
			item.UnitPrice = input.UnitPrice
			item.IsBundle = input.IsBundle
			item.Priority = input.Priority
			if err := repos.Orders.SaveItem(ctx, item); err != nil {
				return fmt.Errorf("failed to save item %s: %w", input.SKU, err)
			}
			items = append(items, item)
		}

		expanded, err := ExpandPendingBundles(ctx, repos, items)
		if err != nil {
			return err
		}

		response = &IngestOrderResponse{
			OrderID:            order.OrderID,
			TargetPurchaseDate: targetDate,
			ItemCount:          len(items),
			ExpandedChildren:   expanded,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Infow("order ingested",
		"order_id", response.OrderID,
		"external_order_id", cmd.ExternalOrderID,
		"target_date", response.TargetPurchaseDate.Format("2006-01-02"),
		"items", response.ItemCount,
		"expanded_children", response.ExpandedChildren)
	return response, nil
}

// ExpandPendingBundles spawns child items for every pending bundle line,
// persisting the children and the bundle's status flip. Returns the child
// count. Also called defensively at plan start for late-flagged bundles.
func ExpandPendingBundles(ctx context.Context, repos *common.Repositories, items []*ordering.OrderItem) (int, error) {
	var bundles []*ordering.OrderItem
	skus := make([]string, 0)
	for _, item := range items {
		if item.IsBundle && item.Status == ordering.ItemPending {
			bundles = append(bundles, item)
			skus = append(skus, item.SKU)
		}
	}
	if len(bundles) == 0 {
		return 0, nil
	}

	products, err := repos.Products.ListBySKUs(ctx, skus)
	if err != nil {
		return 0, fmt.Errorf("failed to load bundle products: %w", err)
	}
	bySKU := make(map[string]int, len(products))
	for i, p := range products {
		bySKU[p.SKU] = i
	}

	total := 0
	for _, bundle := range bundles {
		var product *catalog.Product
		if idx, ok := bySKU[bundle.SKU]; ok {
			product = products[idx]
		}

		children, err := bundle.ExpandBundle(product)
		if err != nil {
			return total, err
		}
		for _, child := range children {
			if err := repos.Orders.SaveItem(ctx, child); err != nil {
				return total, fmt.Errorf("failed to save bundle child %s: %w", child.SKU, err)
			}
		}
		if err := repos.Orders.UpdateItemStatus(ctx, bundle.ItemID, bundle.Status); err != nil {
			return total, fmt.Errorf("failed to update bundle item %d: %w", bundle.ItemID, err)
		}
		total += len(children)
	}
	return total, nil
}
