package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kaitori/dispatch-go/internal/domain/planning"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// GormPurchaseListRepository implements PurchaseListRepository using GORM
type GormPurchaseListRepository struct {
	db *gorm.DB
}

func NewGormPurchaseListRepository(db *gorm.DB) *GormPurchaseListRepository {
	return &GormPurchaseListRepository{db: db}
}

// FindByStaffAndDate retrieves a buyer's list for the date; nil when the
// buyer has none yet
func (r *GormPurchaseListRepository) FindByStaffAndDate(ctx context.Context, staffID int, date time.Time) (*planning.PurchaseList, error) {
	var model PurchaseListModel
	result := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order") }).
		First(&model, "staff_id = ? AND purchase_date = ?", staffID, shared.DateOf(date))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find purchase list: %w", result.Error)
	}
	return r.modelToList(&model), nil
}

// FindByID retrieves a list with its tasks
func (r *GormPurchaseListRepository) FindByID(ctx context.Context, listID int) (*planning.PurchaseList, error) {
	var model PurchaseListModel
	result := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order") }).
		First(&model, "list_id = ?", listID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("purchase_list", listID)
		}
		return nil, fmt.Errorf("failed to find purchase list: %w", result.Error)
	}
	return r.modelToList(&model), nil
}

// ListByDate retrieves every buyer's list for the date
func (r *GormPurchaseListRepository) ListByDate(ctx context.Context, date time.Time) ([]*planning.PurchaseList, error) {
	var models []PurchaseListModel
	result := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order") }).
		Where("purchase_date = ?", shared.DateOf(date)).
		Order("staff_id").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list purchase lists: %w", result.Error)
	}

	lists := make([]*planning.PurchaseList, 0, len(models))
	for i := range models {
		lists = append(lists, r.modelToList(&models[i]))
	}
	return lists, nil
}

// CountItems returns per-staff buy-task counts for the date in one query
func (r *GormPurchaseListRepository) CountItems(ctx context.Context, staffIDs []int, date time.Time) (map[int]int, error) {
	counts := make(map[int]int, len(staffIDs))
	if len(staffIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		StaffID int
		Total   int
	}
	result := r.db.WithContext(ctx).Model(&PurchaseListItemModel{}).
		Select("purchase_lists.staff_id AS staff_id, COUNT(*) AS total").
		Joins("JOIN purchase_lists ON purchase_lists.list_id = purchase_list_items.list_id").
		Where("purchase_lists.staff_id IN ? AND purchase_lists.purchase_date = ?", staffIDs, shared.DateOf(date)).
		Group("purchase_lists.staff_id").
		Scan(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to count buy tasks: %w", result.Error)
	}

	for _, row := range rows {
		counts[row.StaffID] = row.Total
	}
	return counts, nil
}

// Create inserts an empty list. A concurrent plan inserting the same
// (staff, date) row surfaces as a ConflictError via the unique index.
func (r *GormPurchaseListRepository) Create(ctx context.Context, list *planning.PurchaseList) error {
	model := &PurchaseListModel{
		StaffID:      list.StaffID,
		PurchaseDate: list.PurchaseDate,
		Status:       string(list.Status),
		TotalItems:   list.TotalItems,
		TotalStores:  list.TotalStores,
	}
	result := r.db.WithContext(ctx).Omit("Items").Create(model)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return shared.NewConflictError(fmt.Sprintf(
				"purchase list for staff %d on %s already exists",
				list.StaffID, list.PurchaseDate.Format("2006-01-02")))
		}
		return fmt.Errorf("failed to create purchase list: %w", result.Error)
	}
	list.ListID = model.ListID
	return nil
}

// AppendItems inserts new buy tasks for the list
func (r *GormPurchaseListRepository) AppendItems(ctx context.Context, listID int, items []*planning.PurchaseListItem) error {
	for _, item := range items {
		model := &PurchaseListItemModel{
			ListID:             listID,
			ItemID:             item.ItemID,
			StoreID:            item.StoreID,
			QuantityToPurchase: item.QuantityToPurchase,
			SequenceOrder:      item.SequenceOrder,
			Status:             string(item.Status),
		}
		if result := r.db.WithContext(ctx).Create(model); result.Error != nil {
			return fmt.Errorf("failed to append buy task: %w", result.Error)
		}
		item.ListItemID = model.ListItemID
		item.ListID = listID
	}
	return nil
}

// UpdateTotals writes the recomputed total columns
func (r *GormPurchaseListRepository) UpdateTotals(ctx context.Context, list *planning.PurchaseList) error {
	result := r.db.WithContext(ctx).Model(&PurchaseListModel{}).
		Where("list_id = ?", list.ListID).
		Updates(map[string]interface{}{
			"total_items":  list.TotalItems,
			"total_stores": list.TotalStores,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update list totals: %w", result.Error)
	}
	return nil
}

// UpdateStatus updates one list's status column
func (r *GormPurchaseListRepository) UpdateStatus(ctx context.Context, listID int, status planning.ListStatus) error {
	result := r.db.WithContext(ctx).Model(&PurchaseListModel{}).
		Where("list_id = ?", listID).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("failed to update list status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("purchase_list", listID)
	}
	return nil
}

// FindItemByID retrieves one buy task
func (r *GormPurchaseListRepository) FindItemByID(ctx context.Context, listItemID int) (*planning.PurchaseListItem, error) {
	var model PurchaseListItemModel
	result := r.db.WithContext(ctx).First(&model, "list_item_id = ?", listItemID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("purchase_list_item", listItemID)
		}
		return nil, fmt.Errorf("failed to find buy task: %w", result.Error)
	}
	return r.modelToItem(&model), nil
}

// UpdateItemStatus updates one buy task's status column
func (r *GormPurchaseListRepository) UpdateItemStatus(ctx context.Context, listItemID int, status planning.PurchaseStatus) error {
	result := r.db.WithContext(ctx).Model(&PurchaseListItemModel{}).
		Where("list_item_id = ?", listItemID).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("failed to update buy task status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("purchase_list_item", listItemID)
	}
	return nil
}

// ListItemsByOrderItems retrieves every buy task referencing the order
// items, across all lists
func (r *GormPurchaseListRepository) ListItemsByOrderItems(ctx context.Context, itemIDs []int) ([]*planning.PurchaseListItem, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var models []PurchaseListItemModel
	result := r.db.WithContext(ctx).Where("item_id IN ?", itemIDs).Order("list_item_id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list buy tasks: %w", result.Error)
	}

	items := make([]*planning.PurchaseListItem, 0, len(models))
	for i := range models {
		items = append(items, r.modelToItem(&models[i]))
	}
	return items, nil
}

func (r *GormPurchaseListRepository) modelToList(model *PurchaseListModel) *planning.PurchaseList {
	list := &planning.PurchaseList{
		ListID:       model.ListID,
		StaffID:      model.StaffID,
		PurchaseDate: shared.DateOf(model.PurchaseDate),
		Status:       planning.ListStatus(model.Status),
		TotalItems:   model.TotalItems,
		TotalStores:  model.TotalStores,
	}
	for i := range model.Items {
		list.Items = append(list.Items, r.modelToItem(&model.Items[i]))
	}
	return list
}

func (r *GormPurchaseListRepository) modelToItem(model *PurchaseListItemModel) *planning.PurchaseListItem {
	return &planning.PurchaseListItem{
		ListItemID:         model.ListItemID,
		ListID:             model.ListID,
		ItemID:             model.ItemID,
		StoreID:            model.StoreID,
		QuantityToPurchase: model.QuantityToPurchase,
		SequenceOrder:      model.SequenceOrder,
		Status:             planning.PurchaseStatus(model.Status),
	}
}
