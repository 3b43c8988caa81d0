package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/kaitori/dispatch-go/internal/domain/catalog"
)

// splitRuleDoc is the persisted shape of a bundle split rule
type splitRuleDoc struct {
	Items []catalog.BundleComponent `json:"items"`
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// ListBySKUs retrieves the products of a SKU set in one read
func (r *GormProductRepository) ListBySKUs(ctx context.Context, skus []string) ([]*catalog.Product, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	var models []ProductModel
	result := r.db.WithContext(ctx).Where("sku IN ?", skus).Order("product_id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list products: %w", result.Error)
	}

	products := make([]*catalog.Product, 0, len(models))
	for i := range models {
		product, err := r.modelToProduct(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert product %s: %w", models[i].SKU, err)
		}
		products = append(products, product)
	}
	return products, nil
}

// ListActiveMappings retrieves the active store mappings of a product-id
// set in one read
func (r *GormProductRepository) ListActiveMappings(ctx context.Context, productIDs []int) ([]*catalog.ProductStoreMapping, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var models []ProductStoreMappingModel
	result := r.db.WithContext(ctx).
		Where("product_id IN ? AND is_active = ?", productIDs, true).
		Order("mapping_id").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", result.Error)
	}

	mappings := make([]*catalog.ProductStoreMapping, 0, len(models))
	for i := range models {
		mappings = append(mappings, r.modelToMapping(&models[i]))
	}
	return mappings, nil
}

// Save persists a product (insert or update)
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model, err := r.productToModel(product)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save product: %w", result.Error)
	}
	product.ProductID = model.ProductID
	return nil
}

func (r *GormProductRepository) modelToProduct(model *ProductModel) (*catalog.Product, error) {
	var rule []catalog.BundleComponent
	if model.SetSplitRule != "" {
		var doc splitRuleDoc
		if err := json.Unmarshal([]byte(model.SetSplitRule), &doc); err != nil {
			return nil, fmt.Errorf("failed to parse split rule: %w", err)
		}
		rule = doc.Items
	}

	return &catalog.Product{
		ProductID:          model.ProductID,
		SKU:                model.SKU,
		ProductName:        model.ProductName,
		Category:           model.Category,
		IsStoreFixed:       model.IsStoreFixed,
		FixedStoreID:       model.FixedStoreID,
		ExcludeFromRouting: model.ExcludeFromRouting,
		SetSplitRule:       rule,
	}, nil
}

func (r *GormProductRepository) productToModel(product *catalog.Product) (*ProductModel, error) {
	var ruleJSON string
	if len(product.SetSplitRule) > 0 {
		bytes, err := json.Marshal(splitRuleDoc{Items: product.SetSplitRule})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal split rule: %w", err)
		}
		ruleJSON = string(bytes)
	}

	return &ProductModel{
		ProductID:          product.ProductID,
		SKU:                product.SKU,
		ProductName:        product.ProductName,
		Category:           product.Category,
		IsStoreFixed:       product.IsStoreFixed,
		FixedStoreID:       product.FixedStoreID,
		ExcludeFromRouting: product.ExcludeFromRouting,
		SetSplitRule:       ruleJSON,
	}, nil
}

func (r *GormProductRepository) modelToMapping(model *ProductStoreMappingModel) *catalog.ProductStoreMapping {
	return &catalog.ProductStoreMapping{
		MappingID:        model.MappingID,
		ProductID:        model.ProductID,
		StoreID:          model.StoreID,
		IsPrimaryStore:   model.IsPrimaryStore,
		Priority:         model.Priority,
		StockStatus:      catalog.StockStatus(model.StockStatus),
		MaxDailyQuantity: model.MaxDailyQuantity,
		CurrentAvailable: model.CurrentAvailable,
	}
}

// SaveMapping persists a product-store mapping, used by fixtures and
// catalog imports
func (r *GormProductRepository) SaveMapping(ctx context.Context, mapping *catalog.ProductStoreMapping) error {
	model := &ProductStoreMappingModel{
		MappingID:        mapping.MappingID,
		ProductID:        mapping.ProductID,
		StoreID:          mapping.StoreID,
		IsPrimaryStore:   mapping.IsPrimaryStore,
		Priority:         mapping.Priority,
		StockStatus:      string(mapping.StockStatus),
		MaxDailyQuantity: mapping.MaxDailyQuantity,
		CurrentAvailable: mapping.CurrentAvailable,
		IsActive:         true,
	}
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save mapping: %w", result.Error)
	}
	mapping.MappingID = model.MappingID
	return nil
}
