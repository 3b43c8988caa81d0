package routing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kaitori/dispatch-go/internal/application/common"
	"github.com/kaitori/dispatch-go/internal/domain/routing"
)

// RecomputeMatrixCommand rebuilds the cached store distance matrix for
// every pair of active, geo-located stores
type RecomputeMatrixCommand struct{}

// RecomputeMatrixResponse reports the rebuild
type RecomputeMatrixResponse struct {
	Stores   int
	Geocoded int
	Edges    int
}

// RecomputeMatrixHandler upserts all-pairs distances. Stores carrying an
// address but no coordinates are geocoded first when a geocoder is
// configured.
type RecomputeMatrixHandler struct {
	uow      common.UnitOfWork
	geocoder common.Geocoder // nil disables address decoding
	logger   *zap.SugaredLogger
}

func NewRecomputeMatrixHandler(uow common.UnitOfWork, geocoder common.Geocoder, logger *zap.SugaredLogger) *RecomputeMatrixHandler {
	return &RecomputeMatrixHandler{uow: uow, geocoder: geocoder, logger: logger}
}

func (h *RecomputeMatrixHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*RecomputeMatrixCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *RecomputeMatrixCommand")
	}

	var response *RecomputeMatrixResponse
	err := h.uow.Execute(ctx, func(ctx context.Context, repos *common.Repositories) error {
		stores, err := repos.Stores.ListActive(ctx)
		if err != nil {
			return fmt.Errorf("failed to load stores: %w", err)
		}

		geocoded := 0
		if h.geocoder != nil {
			for _, store := range stores {
				if store.HasLocation() || store.Address == "" {
					continue
				}
				coord, err := h.geocoder.Geocode(ctx, store.Address)
				if err != nil {
					h.logger.Warnw("geocoding failed",
						"store_id", store.StoreID, "address", store.Address, "error", err)
					continue
				}
				store.Location = &coord
				if err := repos.Stores.Save(ctx, store); err != nil {
					return fmt.Errorf("failed to save geocoded store %d: %w", store.StoreID, err)
				}
				geocoded++
			}
		}

		edges := routing.ComputeAllPairs(stores, time.Now().UTC())
		if err := repos.Matrix.UpsertEdges(ctx, edges); err != nil {
			return fmt.Errorf("failed to upsert matrix edges: %w", err)
		}

		response = &RecomputeMatrixResponse{
			Stores:   len(stores),
			Geocoded: geocoded,
			Edges:    len(edges),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Infow("distance matrix recomputed",
		"stores", response.Stores,
		"geocoded", response.Geocoded,
		"edges", response.Edges)
	return response, nil
}
