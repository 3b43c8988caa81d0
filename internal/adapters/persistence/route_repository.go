package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kaitori/dispatch-go/internal/domain/routing"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// GormRouteRepository implements RouteRepository using GORM
type GormRouteRepository struct {
	db *gorm.DB
}

func NewGormRouteRepository(db *gorm.DB) *GormRouteRepository {
	return &GormRouteRepository{db: db}
}

// FindByID retrieves a route with its stops in sequence order
func (r *GormRouteRepository) FindByID(ctx context.Context, routeID int) (*routing.Route, error) {
	var model RouteModel
	result := r.db.WithContext(ctx).
		Preload("Stops", func(db *gorm.DB) *gorm.DB { return db.Order("stop_sequence") }).
		First(&model, "route_id = ?", routeID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("route", routeID)
		}
		return nil, fmt.Errorf("failed to find route: %w", result.Error)
	}
	return r.modelToRoute(&model)
}

// FindByListID retrieves the route of a purchase list; nil when none
// exists yet
func (r *GormRouteRepository) FindByListID(ctx context.Context, listID int) (*routing.Route, error) {
	var model RouteModel
	result := r.db.WithContext(ctx).
		Preload("Stops", func(db *gorm.DB) *gorm.DB { return db.Order("stop_sequence") }).
		First(&model, "list_id = ?", listID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find route by list: %w", result.Error)
	}
	return r.modelToRoute(&model)
}

// ListByDate retrieves every route for the date
func (r *GormRouteRepository) ListByDate(ctx context.Context, date time.Time) ([]*routing.Route, error) {
	var models []RouteModel
	result := r.db.WithContext(ctx).
		Preload("Stops", func(db *gorm.DB) *gorm.DB { return db.Order("stop_sequence") }).
		Where("route_date = ?", shared.DateOf(date)).
		Order("route_id").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list routes: %w", result.Error)
	}

	routes := make([]*routing.Route, 0, len(models))
	for i := range models {
		route, err := r.modelToRoute(&models[i])
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}

// Create inserts a new route row
func (r *GormRouteRepository) Create(ctx context.Context, route *routing.Route) error {
	lat, lng := coordToDecimals(&route.StartLocation)
	model := &RouteModel{
		ListID:               route.ListID,
		StaffID:              route.StaffID,
		RouteDate:            route.RouteDate,
		Status:               string(route.Status),
		TotalDistanceKm:      route.TotalDistanceKm,
		EstimatedTimeMinutes: route.EstimatedTimeMinutes,
		StartLatitude:        lat,
		StartLongitude:       lng,
		IncludeReturn:        route.IncludeReturn,
	}
	result := r.db.WithContext(ctx).Omit("Stops").Create(model)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return shared.NewConflictError(fmt.Sprintf("route for list %d already exists", route.ListID))
		}
		return fmt.Errorf("failed to create route: %w", result.Error)
	}
	route.RouteID = model.RouteID
	return nil
}

// ReplaceStops deletes the route's stops and inserts the new sequence.
// Route regeneration keeps the route id stable through this call.
func (r *GormRouteRepository) ReplaceStops(ctx context.Context, routeID int, stops []*routing.RouteStop) error {
	if result := r.db.WithContext(ctx).Where("route_id = ?", routeID).Delete(&RouteStopModel{}); result.Error != nil {
		return fmt.Errorf("failed to delete stops of route %d: %w", routeID, result.Error)
	}

	for _, stop := range stops {
		model, err := r.stopToModel(stop)
		if err != nil {
			return err
		}
		model.StopID = 0
		model.RouteID = routeID
		if result := r.db.WithContext(ctx).Create(model); result.Error != nil {
			return fmt.Errorf("failed to insert stop: %w", result.Error)
		}
		stop.StopID = model.StopID
		stop.RouteID = routeID
	}
	return nil
}

// UpdateTotals writes the optimizer's route totals and start point
func (r *GormRouteRepository) UpdateTotals(ctx context.Context, route *routing.Route) error {
	lat, lng := coordToDecimals(&route.StartLocation)
	result := r.db.WithContext(ctx).Model(&RouteModel{}).
		Where("route_id = ?", route.RouteID).
		Updates(map[string]interface{}{
			"total_distance_km":      route.TotalDistanceKm,
			"estimated_time_minutes": route.EstimatedTimeMinutes,
			"start_latitude":         lat,
			"start_longitude":        lng,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update route totals: %w", result.Error)
	}
	return nil
}

// UpdateStatus updates one route's status column
func (r *GormRouteRepository) UpdateStatus(ctx context.Context, routeID int, status routing.RouteStatus) error {
	result := r.db.WithContext(ctx).Model(&RouteModel{}).
		Where("route_id = ?", routeID).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("failed to update route status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("route", routeID)
	}
	return nil
}

// UpdateStop persists one stop's execution fields
func (r *GormRouteRepository) UpdateStop(ctx context.Context, stop *routing.RouteStop) error {
	result := r.db.WithContext(ctx).Model(&RouteStopModel{}).
		Where("stop_id = ?", stop.StopID).
		Updates(map[string]interface{}{
			"status":           string(stop.Status),
			"actual_arrival":   stop.ActualArrival,
			"actual_departure": stop.ActualDeparture,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update stop: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("route_stop", stop.StopID)
	}
	return nil
}

func (r *GormRouteRepository) modelToRoute(model *RouteModel) (*routing.Route, error) {
	route := &routing.Route{
		RouteID:              model.RouteID,
		ListID:               model.ListID,
		StaffID:              model.StaffID,
		RouteDate:            shared.DateOf(model.RouteDate),
		Status:               routing.RouteStatus(model.Status),
		TotalDistanceKm:      model.TotalDistanceKm,
		EstimatedTimeMinutes: model.EstimatedTimeMinutes,
		IncludeReturn:        model.IncludeReturn,
	}
	if coord := decimalsToCoord(model.StartLatitude, model.StartLongitude); coord != nil {
		route.StartLocation = *coord
	}
	for i := range model.Stops {
		stop, err := r.modelToStop(&model.Stops[i])
		if err != nil {
			return nil, err
		}
		route.Stops = append(route.Stops, stop)
	}
	return route, nil
}

func (r *GormRouteRepository) modelToStop(model *RouteStopModel) (*routing.RouteStop, error) {
	var itemIDs []int
	if model.ItemsToPurchase != "" {
		if err := json.Unmarshal([]byte(model.ItemsToPurchase), &itemIDs); err != nil {
			return nil, fmt.Errorf("failed to parse stop %d items: %w", model.StopID, err)
		}
	}
	return &routing.RouteStop{
		StopID:           model.StopID,
		RouteID:          model.RouteID,
		StoreID:          model.StoreID,
		StopSequence:     model.StopSequence,
		EstimatedArrival: model.EstimatedArrival,
		ActualArrival:    model.ActualArrival,
		ActualDeparture:  model.ActualDeparture,
		ItemsToPurchase:  itemIDs,
		ItemsCount:       model.ItemsCount,
		Status:           routing.StopStatus(model.Status),
	}, nil
}

func (r *GormRouteRepository) stopToModel(stop *routing.RouteStop) (*RouteStopModel, error) {
	var itemsJSON string
	if len(stop.ItemsToPurchase) > 0 {
		bytes, err := json.Marshal(stop.ItemsToPurchase)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal stop items: %w", err)
		}
		itemsJSON = string(bytes)
	}
	return &RouteStopModel{
		StopID:           stop.StopID,
		RouteID:          stop.RouteID,
		StoreID:          stop.StoreID,
		StopSequence:     stop.StopSequence,
		EstimatedArrival: stop.EstimatedArrival,
		ActualArrival:    stop.ActualArrival,
		ActualDeparture:  stop.ActualDeparture,
		ItemsToPurchase:  itemsJSON,
		ItemsCount:       stop.ItemsCount,
		Status:           string(stop.Status),
	}, nil
}
