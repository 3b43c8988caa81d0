package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kaitori/dispatch-go/internal/domain/catalog"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// GormStoreRepository implements StoreRepository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// FindByID retrieves a store by id
func (r *GormStoreRepository) FindByID(ctx context.Context, storeID int) (*catalog.Store, error) {
	var model StoreModel
	result := r.db.WithContext(ctx).First(&model, "store_id = ?", storeID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("store", storeID)
		}
		return nil, fmt.Errorf("failed to find store: %w", result.Error)
	}
	return r.modelToStore(&model)
}

// ListActive retrieves all active stores
func (r *GormStoreRepository) ListActive(ctx context.Context) ([]*catalog.Store, error) {
	var models []StoreModel
	result := r.db.WithContext(ctx).Where("is_active = ?", true).Order("store_id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list stores: %w", result.Error)
	}
	return r.modelsToStores(models)
}

// ListByIDs retrieves stores by id set, active or not
func (r *GormStoreRepository) ListByIDs(ctx context.Context, storeIDs []int) ([]*catalog.Store, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}
	var models []StoreModel
	result := r.db.WithContext(ctx).Where("store_id IN ?", storeIDs).Order("store_id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list stores by ids: %w", result.Error)
	}
	return r.modelsToStores(models)
}

// Save persists a store (insert or update)
func (r *GormStoreRepository) Save(ctx context.Context, store *catalog.Store) error {
	model, err := r.storeToModel(store)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save store: %w", result.Error)
	}
	store.StoreID = model.StoreID
	return nil
}

func (r *GormStoreRepository) modelsToStores(models []StoreModel) ([]*catalog.Store, error) {
	stores := make([]*catalog.Store, 0, len(models))
	for i := range models {
		store, err := r.modelToStore(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert store %d: %w", models[i].StoreID, err)
		}
		stores = append(stores, store)
	}
	return stores, nil
}

func (r *GormStoreRepository) modelToStore(model *StoreModel) (*catalog.Store, error) {
	var hours shared.WeeklyHours
	if model.OpeningHours != "" {
		var raw map[string]string
		if err := json.Unmarshal([]byte(model.OpeningHours), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse opening hours: %w", err)
		}
		parsed, err := shared.ParseWeeklyHours(raw)
		if err != nil {
			return nil, err
		}
		hours = parsed
	}

	return &catalog.Store{
		StoreID:       model.StoreID,
		StoreName:     model.StoreName,
		Address:       model.Address,
		Location:      decimalsToCoord(model.Latitude, model.Longitude),
		District:      model.District,
		Category:      model.Category,
		PriorityLevel: model.PriorityLevel,
		IsActive:      model.IsActive,
		OpeningHours:  hours,
	}, nil
}

func (r *GormStoreRepository) storeToModel(store *catalog.Store) (*StoreModel, error) {
	var hoursJSON string
	if raw := store.OpeningHours.Format(); raw != nil {
		bytes, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal opening hours: %w", err)
		}
		hoursJSON = string(bytes)
	}

	lat, lng := coordToDecimals(store.Location)
	return &StoreModel{
		StoreID:       store.StoreID,
		StoreName:     store.StoreName,
		Address:       store.Address,
		Latitude:      lat,
		Longitude:     lng,
		District:      store.District,
		Category:      store.Category,
		PriorityLevel: store.PriorityLevel,
		IsActive:      store.IsActive,
		OpeningHours:  hoursJSON,
	}, nil
}
