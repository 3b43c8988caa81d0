package planning

import (
	"context"
	"fmt"

	"github.com/kaitori/dispatch-go/internal/application/common"
	"github.com/kaitori/dispatch-go/internal/domain/catalog"
	"github.com/kaitori/dispatch-go/internal/domain/ordering"
	"github.com/kaitori/dispatch-go/internal/domain/planning"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// loadCatalog gathers the allocator's master data in three bulk reads:
// products by SKU set, active mappings by product-id set, active stores.
func loadCatalog(ctx context.Context, repos *common.Repositories, skus []string) (*planning.Catalog, map[int]shared.Coordinate, error) {
	products, err := repos.Products.ListBySKUs(ctx, skus)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load products: %w", err)
	}

	productIDs := make([]int, 0, len(products))
	bySKU := make(map[string]*catalog.Product, len(products))
	for _, p := range products {
		productIDs = append(productIDs, p.ProductID)
		bySKU[p.SKU] = p
	}

	mappings, err := repos.Products.ListActiveMappings(ctx, productIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load store mappings: %w", err)
	}
	byProduct := make(map[int][]*catalog.ProductStoreMapping)
	for _, m := range mappings {
		byProduct[m.ProductID] = append(byProduct[m.ProductID], m)
	}

	stores, err := repos.Stores.ListActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load stores: %w", err)
	}
	byID := make(map[int]*catalog.Store, len(stores))
	locations := make(map[int]shared.Coordinate, len(stores))
	for _, s := range stores {
		byID[s.StoreID] = s
		if s.HasLocation() {
			locations[s.StoreID] = *s.Location
		}
	}

	return &planning.Catalog{
		ProductsBySKU: bySKU,
		Mappings:      byProduct,
		Stores:        byID,
	}, locations, nil
}

// allocatableSlice projects order items into the allocator's input shape,
// preserving order for deterministic runs.
func allocatableSlice(items []*ordering.OrderItem) []planning.AllocatableItem {
	out := make([]planning.AllocatableItem, 0, len(items))
	for _, item := range items {
		out = append(out, planning.AllocatableItem{
			ItemID:   item.ItemID,
			SKU:      item.SKU,
			Quantity: item.Quantity,
		})
	}
	return out
}

// uniqueSKUs returns the distinct SKUs of the items, in first-seen order
func uniqueSKUs(items []*ordering.OrderItem) []string {
	seen := make(map[string]struct{}, len(items))
	var skus []string
	for _, item := range items {
		if _, ok := seen[item.SKU]; !ok {
			seen[item.SKU] = struct{}{}
			skus = append(skus, item.SKU)
		}
	}
	return skus
}
