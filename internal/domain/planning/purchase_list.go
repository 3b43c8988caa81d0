package planning

import (
	"fmt"
	"time"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// ListStatus tracks a purchase list through its day
type ListStatus string

const (
	ListDraft      ListStatus = "draft"
	ListAssigned   ListStatus = "assigned"
	ListInProgress ListStatus = "in_progress"
	ListCompleted  ListStatus = "completed"
)

// PurchaseStatus tracks a single buy task
type PurchaseStatus string

const (
	PurchasePending    PurchaseStatus = "pending"
	PurchaseInProgress PurchaseStatus = "in_progress"
	PurchasePurchased  PurchaseStatus = "purchased"
	PurchaseFailed     PurchaseStatus = "failed"
	PurchaseSkipped    PurchaseStatus = "skipped"
)

// PurchaseListItem is one atomic buy task: buy QuantityToPurchase units of
// the order item at the given store.
type PurchaseListItem struct {
	ListItemID         int
	ListID             int
	ItemID             int
	StoreID            int
	QuantityToPurchase int
	SequenceOrder      int
	Status             PurchaseStatus
}

// PurchaseList is a buyer's workload for one business day.
// Unique per (staff, date); the planner reuses an existing list rather
// than creating a second one.
type PurchaseList struct {
	ListID       int
	StaffID      int
	PurchaseDate time.Time
	Status       ListStatus
	TotalItems   int
	TotalStores  int
	Items        []*PurchaseListItem
}

// NewPurchaseList creates an empty draft list for a buyer and date
func NewPurchaseList(staffID int, date time.Time) (*PurchaseList, error) {
	if staffID <= 0 {
		return nil, shared.NewValidationError("staff_id", "must be positive")
	}
	return &PurchaseList{
		StaffID:      staffID,
		PurchaseDate: shared.DateOf(date),
		Status:       ListDraft,
	}, nil
}

// Append adds a buy task with the next sequence number
func (l *PurchaseList) Append(itemID, storeID, quantity int) (*PurchaseListItem, error) {
	if quantity < 1 {
		return nil, shared.NewValidationError("quantity_to_purchase", fmt.Sprintf("must be >= 1, got %d", quantity))
	}
	task := &PurchaseListItem{
		ListID:             l.ListID,
		ItemID:             itemID,
		StoreID:            storeID,
		QuantityToPurchase: quantity,
		SequenceOrder:      len(l.Items) + 1,
		Status:             PurchasePending,
	}
	l.Items = append(l.Items, task)
	return task, nil
}

// RecountTotals recomputes TotalItems and the distinct TotalStores
func (l *PurchaseList) RecountTotals() {
	l.TotalItems = len(l.Items)
	stores := make(map[int]struct{}, len(l.Items))
	for _, item := range l.Items {
		stores[item.StoreID] = struct{}{}
	}
	l.TotalStores = len(stores)
}

// DistinctStoreIDs returns the stores this list visits, unordered
func (l *PurchaseList) DistinctStoreIDs() []int {
	seen := make(map[int]struct{}, len(l.Items))
	var ids []int
	for _, item := range l.Items {
		if _, ok := seen[item.StoreID]; !ok {
			seen[item.StoreID] = struct{}{}
			ids = append(ids, item.StoreID)
		}
	}
	return ids
}

func (l *PurchaseList) String() string {
	return fmt.Sprintf("PurchaseList(%d staff=%d date=%s items=%d)",
		l.ListID, l.StaffID, l.PurchaseDate.Format("2006-01-02"), len(l.Items))
}
