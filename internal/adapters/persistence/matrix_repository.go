package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kaitori/dispatch-go/internal/domain/routing"
)

// GormDistanceMatrixRepository implements DistanceMatrixRepository using GORM
type GormDistanceMatrixRepository struct {
	db *gorm.DB
}

func NewGormDistanceMatrixRepository(db *gorm.DB) *GormDistanceMatrixRepository {
	return &GormDistanceMatrixRepository{db: db}
}

// ListAmong retrieves cached edges whose endpoints are both in the set
func (r *GormDistanceMatrixRepository) ListAmong(ctx context.Context, storeIDs []int) ([]routing.Edge, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}
	var models []StoreDistanceModel
	result := r.db.WithContext(ctx).
		Where("from_store_id IN ? AND to_store_id IN ?", storeIDs, storeIDs).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list matrix edges: %w", result.Error)
	}
	return modelsToEdges(models), nil
}

// UpsertEdges writes the recomputed all-pairs distances. Re-running the
// recompute is idempotent.
func (r *GormDistanceMatrixRepository) UpsertEdges(ctx context.Context, edges []routing.Edge) error {
	if len(edges) == 0 {
		return nil
	}

	models := make([]StoreDistanceModel, 0, len(edges))
	for _, e := range edges {
		models = append(models, StoreDistanceModel{
			FromStoreID:       e.FromStoreID,
			ToStoreID:         e.ToStoreID,
			DistanceKm:        e.DistanceKm,
			TravelTimeMinutes: e.TravelTimeMinutes,
			LastCalculated:    e.LastCalculated,
		})
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_store_id"}, {Name: "to_store_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"distance_km", "travel_time_minutes", "last_calculated"}),
	}).CreateInBatches(models, 500)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert matrix edges: %w", result.Error)
	}
	return nil
}

// NearestFrom retrieves the closest cached stores from one store,
// ascending by distance
func (r *GormDistanceMatrixRepository) NearestFrom(ctx context.Context, storeID, limit int) ([]routing.Edge, error) {
	var models []StoreDistanceModel
	result := r.db.WithContext(ctx).
		Where("from_store_id = ?", storeID).
		Order("distance_km").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query nearest stores: %w", result.Error)
	}
	return modelsToEdges(models), nil
}

func modelsToEdges(models []StoreDistanceModel) []routing.Edge {
	edges := make([]routing.Edge, 0, len(models))
	for _, m := range models {
		edges = append(edges, routing.Edge{
			FromStoreID:       m.FromStoreID,
			ToStoreID:         m.ToStoreID,
			DistanceKm:        m.DistanceKm,
			TravelTimeMinutes: m.TravelTimeMinutes,
			LastCalculated:    m.LastCalculated,
		})
	}
	return edges
}
