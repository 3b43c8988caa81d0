package routing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kaitori/dispatch-go/internal/application/common"
)

// NearestStoresQuery asks for the closest stores from one store, by
// cached matrix distance
type NearestStoresQuery struct {
	StoreID int
	Limit   int
}

// NearbyStore is one nearest-stores result row
type NearbyStore struct {
	StoreID           int
	StoreName         string
	DistanceKm        float64
	TravelTimeMinutes int
}

// NearestStoresResponse lists the closest stores in ascending distance
type NearestStoresResponse struct {
	FromStoreID int
	Stores      []NearbyStore
}

const defaultNearestLimit = 5

// NearestStoresHandler serves the matrix-backed proximity lookup
type NearestStoresHandler struct {
	uow    common.UnitOfWork
	logger *zap.SugaredLogger
}

func NewNearestStoresHandler(uow common.UnitOfWork, logger *zap.SugaredLogger) *NearestStoresHandler {
	return &NearestStoresHandler{uow: uow, logger: logger}
}

func (h *NearestStoresHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*NearestStoresQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *NearestStoresQuery")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultNearestLimit
	}

	var response *NearestStoresResponse
	err := h.uow.Execute(ctx, func(ctx context.Context, repos *common.Repositories) error {
		if _, err := repos.Stores.FindByID(ctx, query.StoreID); err != nil {
			return err
		}

		edges, err := repos.Matrix.NearestFrom(ctx, query.StoreID, limit)
		if err != nil {
			return fmt.Errorf("failed to query nearest stores: %w", err)
		}

		ids := make([]int, 0, len(edges))
		for _, e := range edges {
			ids = append(ids, e.ToStoreID)
		}
		stores, err := repos.Stores.ListByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load nearby stores: %w", err)
		}
		names := make(map[int]string, len(stores))
		for _, s := range stores {
			names[s.StoreID] = s.StoreName
		}

		response = &NearestStoresResponse{FromStoreID: query.StoreID}
		for _, e := range edges {
			response.Stores = append(response.Stores, NearbyStore{
				StoreID:           e.ToStoreID,
				StoreName:         names[e.ToStoreID],
				DistanceKm:        e.DistanceKm,
				TravelTimeMinutes: e.TravelTimeMinutes,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}
