package ordering

import (
	"fmt"
	"time"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// OrderStatus tracks an order through the planning and execution lifecycle
type OrderStatus string

const (
	OrderPending            OrderStatus = "pending"
	OrderProcessing         OrderStatus = "processing"
	OrderAssigned           OrderStatus = "assigned"
	OrderInProgress         OrderStatus = "in_progress"
	OrderCompleted          OrderStatus = "completed"
	OrderPartiallyCompleted OrderStatus = "partially_completed"
	OrderFailed             OrderStatus = "failed"
	OrderCancelled          OrderStatus = "cancelled"
)

// Order is an externally ingested purchase order.
// TargetPurchaseDate is assigned exactly once by the cutoff scheduler.
type Order struct {
	OrderID            int
	ExternalOrderID    string
	SourceChannel      string
	CustomerName       string
	OrderDate          time.Time // arrival timestamp, UTC
	TargetPurchaseDate *time.Time
	Status             OrderStatus
	Items              []*OrderItem
}

// NewOrder creates a pending order
func NewOrder(externalID, channel, customer string, arrival time.Time) (*Order, error) {
	if externalID == "" {
		return nil, shared.NewValidationError("external_order_id", "cannot be empty")
	}
	return &Order{
		ExternalOrderID: externalID,
		SourceChannel:   channel,
		CustomerName:    customer,
		OrderDate:       arrival.UTC(),
		Status:          OrderPending,
	}, nil
}

// Schedule assigns the target purchase date. It may only happen once.
func (o *Order) Schedule(date time.Time) error {
	if o.TargetPurchaseDate != nil {
		return shared.NewValidationError("target_purchase_date", "already assigned")
	}
	d := shared.DateOf(date)
	o.TargetPurchaseDate = &d
	return nil
}

// PendingItems returns non-bundle items still awaiting assignment
func (o *Order) PendingItems() []*OrderItem {
	var pending []*OrderItem
	for _, item := range o.Items {
		if item.Status == ItemPending && !item.IsBundle {
			pending = append(pending, item)
		}
	}
	return pending
}

func (o *Order) String() string {
	return fmt.Sprintf("Order(%d ext=%s status=%s)", o.OrderID, o.ExternalOrderID, o.Status)
}
