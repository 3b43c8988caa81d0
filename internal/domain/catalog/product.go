package catalog

import (
	"fmt"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// BundleComponent is one child line of a bundle split rule
type BundleComponent struct {
	SKU          string `json:"sku"`
	QtyPerBundle int    `json:"qty"`
}

// Product is the master record for a purchasable SKU
type Product struct {
	ProductID          int
	SKU                string
	ProductName        string
	Category           string
	IsStoreFixed       bool
	FixedStoreID       *int
	ExcludeFromRouting bool
	SetSplitRule       []BundleComponent
}

// NewProduct creates a product with validation.
// A store-fixed product must carry its fixed store id.
func NewProduct(sku, name string) (*Product, error) {
	if sku == "" {
		return nil, shared.NewValidationError("sku", "cannot be empty")
	}
	return &Product{SKU: sku, ProductName: name}, nil
}

// FixToStore pins all allocations of this product to a single store
func (p *Product) FixToStore(storeID int) error {
	if storeID <= 0 {
		return shared.NewValidationError("fixed_store_id", "must reference an active store")
	}
	p.IsStoreFixed = true
	p.FixedStoreID = &storeID
	return nil
}

// HasSplitRule reports whether the product defines bundle expansion
func (p *Product) HasSplitRule() bool {
	return len(p.SetSplitRule) > 0
}

func (p *Product) String() string {
	return fmt.Sprintf("Product(%s)", p.SKU)
}
