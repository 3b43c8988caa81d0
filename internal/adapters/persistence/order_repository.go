package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kaitori/dispatch-go/internal/domain/ordering"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID retrieves an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, orderID int) (*ordering.Order, error) {
	var model OrderModel
	result := r.db.WithContext(ctx).Preload("Items").First(&model, "order_id = ?", orderID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("order", orderID)
		}
		return nil, fmt.Errorf("failed to find order: %w", result.Error)
	}
	return r.modelToOrder(&model), nil
}

// ListPendingItems retrieves pending non-bundle items of orders targeted
// at the date, in item-id order
func (r *GormOrderRepository) ListPendingItems(ctx context.Context, date time.Time) ([]*ordering.OrderItem, error) {
	return r.listPending(ctx, date, false)
}

// ListPendingBundles retrieves pending bundle items of orders targeted at
// the date
func (r *GormOrderRepository) ListPendingBundles(ctx context.Context, date time.Time) ([]*ordering.OrderItem, error) {
	return r.listPending(ctx, date, true)
}

func (r *GormOrderRepository) listPending(ctx context.Context, date time.Time, bundles bool) ([]*ordering.OrderItem, error) {
	var models []OrderItemModel
	result := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.order_id = order_items.order_id").
		Where("orders.target_purchase_date = ? AND order_items.status = ? AND order_items.is_bundle = ?",
			shared.DateOf(date), string(ordering.ItemPending), bundles).
		Order("order_items.item_id").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list pending items: %w", result.Error)
	}
	return r.modelsToItems(models), nil
}

// ListItemsByIDs retrieves order items by id set
func (r *GormOrderRepository) ListItemsByIDs(ctx context.Context, itemIDs []int) ([]*ordering.OrderItem, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var models []OrderItemModel
	result := r.db.WithContext(ctx).Where("item_id IN ?", itemIDs).Order("item_id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list items: %w", result.Error)
	}
	return r.modelsToItems(models), nil
}

// ListOrdersOfItems retrieves the distinct owning orders of an item set,
// items preloaded
func (r *GormOrderRepository) ListOrdersOfItems(ctx context.Context, itemIDs []int) ([]*ordering.Order, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var models []OrderModel
	result := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id IN (?)", r.db.Model(&OrderItemModel{}).
			Select("DISTINCT order_id").Where("item_id IN ?", itemIDs)).
		Order("order_id").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list orders of items: %w", result.Error)
	}

	orders := make([]*ordering.Order, 0, len(models))
	for i := range models {
		orders = append(orders, r.modelToOrder(&models[i]))
	}
	return orders, nil
}

// Save persists the order row (items are saved via SaveItem). A duplicate
// external order id surfaces as a ConflictError.
func (r *GormOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	model := r.orderToModel(order)
	result := r.db.WithContext(ctx).Omit("Items").Save(model)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return shared.NewConflictError(fmt.Sprintf("order %s already exists", order.ExternalOrderID))
		}
		return fmt.Errorf("failed to save order: %w", result.Error)
	}
	order.OrderID = model.OrderID
	return nil
}

// SaveItem persists one order item
func (r *GormOrderRepository) SaveItem(ctx context.Context, item *ordering.OrderItem) error {
	model := r.itemToModel(item)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save order item: %w", result.Error)
	}
	item.ItemID = model.ItemID
	return nil
}

// UpdateItemStatus updates one item's status column
func (r *GormOrderRepository) UpdateItemStatus(ctx context.Context, itemID int, status ordering.ItemStatus) error {
	result := r.db.WithContext(ctx).Model(&OrderItemModel{}).
		Where("item_id = ?", itemID).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("failed to update item status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("order_item", itemID)
	}
	return nil
}

// UpdateStatus updates one order's status column
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, orderID int, status ordering.OrderStatus) error {
	result := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("order_id = ?", orderID).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("order", orderID)
	}
	return nil
}

func (r *GormOrderRepository) modelToOrder(model *OrderModel) *ordering.Order {
	order := &ordering.Order{
		OrderID:            model.OrderID,
		ExternalOrderID:    model.ExternalOrderID,
		SourceChannel:      model.SourceChannel,
		CustomerName:       model.CustomerName,
		OrderDate:          model.OrderDate.UTC(),
		TargetPurchaseDate: model.TargetPurchaseDate,
		Status:             ordering.OrderStatus(model.Status),
	}
	for i := range model.Items {
		order.Items = append(order.Items, r.modelToItem(&model.Items[i]))
	}
	return order
}

func (r *GormOrderRepository) orderToModel(order *ordering.Order) *OrderModel {
	return &OrderModel{
		OrderID:            order.OrderID,
		ExternalOrderID:    order.ExternalOrderID,
		SourceChannel:      order.SourceChannel,
		CustomerName:       order.CustomerName,
		OrderDate:          order.OrderDate,
		TargetPurchaseDate: order.TargetPurchaseDate,
		Status:             string(order.Status),
	}
}

func (r *GormOrderRepository) modelsToItems(models []OrderItemModel) []*ordering.OrderItem {
	items := make([]*ordering.OrderItem, 0, len(models))
	for i := range models {
		items = append(items, r.modelToItem(&models[i]))
	}
	return items
}

func (r *GormOrderRepository) modelToItem(model *OrderItemModel) *ordering.OrderItem {
	return &ordering.OrderItem{
		ItemID:       model.ItemID,
		OrderID:      model.OrderID,
		SKU:          model.SKU,
		ProductName:  model.ProductName,
		Quantity:     model.Quantity,
		UnitPrice:    model.UnitPrice,
		IsBundle:     model.IsBundle,
		ParentItemID: model.ParentItemID,
		Status:       ordering.ItemStatus(model.Status),
		Priority:     model.Priority,
	}
}

func (r *GormOrderRepository) itemToModel(item *ordering.OrderItem) *OrderItemModel {
	return &OrderItemModel{
		ItemID:       item.ItemID,
		OrderID:      item.OrderID,
		SKU:          item.SKU,
		ProductName:  item.ProductName,
		Quantity:     item.Quantity,
		UnitPrice:    item.UnitPrice,
		IsBundle:     item.IsBundle,
		ParentItemID: item.ParentItemID,
		Status:       string(item.Status),
		Priority:     item.Priority,
	}
}

// isDuplicateKey detects unique-constraint violations across the
// postgres and sqlite drivers
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
