package ordering

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kaitori/dispatch-go/internal/domain/catalog"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// ItemStatus tracks an order item through planning and execution
type ItemStatus string

const (
	ItemPending      ItemStatus = "pending"
	ItemAssigned     ItemStatus = "assigned"
	ItemPurchased    ItemStatus = "purchased"
	ItemFailed       ItemStatus = "failed"
	ItemDiscontinued ItemStatus = "discontinued"
	ItemOutOfStock   ItemStatus = "out_of_stock"
	ItemRestocking   ItemStatus = "restocking"
)

// OrderItem is a single line of an order, keyed by SKU.
// A bundle item never participates in assignment directly; it is expanded
// into child items back-linked via ParentItemID.
type OrderItem struct {
	ItemID       int
	OrderID      int
	SKU          string
	ProductName  string
	Quantity     int
	UnitPrice    *decimal.Decimal
	IsBundle     bool
	ParentItemID *int
	Status       ItemStatus
	Priority     string
}

// NewOrderItem creates a pending item with quantity validation
func NewOrderItem(sku, name string, quantity int) (*OrderItem, error) {
	if sku == "" {
		return nil, shared.NewValidationError("sku", "cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewValidationError("quantity", fmt.Sprintf("must be >= 1, got %d", quantity))
	}
	return &OrderItem{SKU: sku, ProductName: name, Quantity: quantity, Status: ItemPending}, nil
}

// ExpandBundle spawns child items from the product's split rule and marks
// the bundle assigned so later planning skips it. Child quantities are
// qty_per_bundle × bundle quantity.
func (i *OrderItem) ExpandBundle(product *catalog.Product) ([]*OrderItem, error) {
	if !i.IsBundle {
		return nil, shared.NewValidationError("is_bundle", "item is not a bundle")
	}
	if product == nil || !product.HasSplitRule() {
		// Bundle with no rule: nothing to spawn, still excluded from planning
		i.Status = ItemAssigned
		return nil, nil
	}

	children := make([]*OrderItem, 0, len(product.SetSplitRule))
	for _, component := range product.SetSplitRule {
		child, err := NewOrderItem(
			component.SKU,
			fmt.Sprintf("%s - %s", i.ProductName, component.SKU),
			component.QtyPerBundle*i.Quantity,
		)
		if err != nil {
			return nil, err
		}
		child.OrderID = i.OrderID
		parentID := i.ItemID
		child.ParentItemID = &parentID
		children = append(children, child)
	}

	i.Status = ItemAssigned
	return children, nil
}

func (i *OrderItem) String() string {
	return fmt.Sprintf("OrderItem(%d sku=%s qty=%d status=%s)", i.ItemID, i.SKU, i.Quantity, i.Status)
}
