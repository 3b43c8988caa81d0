package execution

import (
	"time"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// FailureType classifies why a buy task could not be completed
type FailureType string

const (
	FailureDiscontinued    FailureType = "discontinued"
	FailureOutOfStock      FailureType = "out_of_stock"
	FailureStoreClosed     FailureType = "store_closed"
	FailurePriceMismatch   FailureType = "price_mismatch"
	FailureProductNotFound FailureType = "product_not_found"
	FailureOther           FailureType = "other"
)

var validFailureTypes = map[FailureType]struct{}{
	FailureDiscontinued:    {},
	FailureOutOfStock:      {},
	FailureStoreClosed:     {},
	FailurePriceMismatch:   {},
	FailureProductNotFound: {},
	FailureOther:           {},
}

// PurchaseFailure is an observation record for operational analytics.
// Recording one flips the buy task and its order item to failed; the
// planner never auto-retries or reallocates.
type PurchaseFailure struct {
	FailureID          int
	ListItemID         int
	StaffID            int
	FailureType        FailureType
	AlternativeStoreID *int
	Note               string
	RecordedAt         time.Time
}

// NewPurchaseFailure creates a validated failure record
func NewPurchaseFailure(listItemID, staffID int, kind FailureType, recordedAt time.Time) (*PurchaseFailure, error) {
	if listItemID <= 0 {
		return nil, shared.NewValidationError("list_item_id", "must be positive")
	}
	if _, ok := validFailureTypes[kind]; !ok {
		return nil, shared.NewValidationError("failure_type", string(kind))
	}
	return &PurchaseFailure{
		ListItemID:  listItemID,
		StaffID:     staffID,
		FailureType: kind,
		RecordedAt:  recordedAt.UTC(),
	}, nil
}
