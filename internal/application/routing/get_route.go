package routing

import (
	"context"
	"fmt"

	"github.com/kaitori/dispatch-go/internal/application/common"
	"github.com/kaitori/dispatch-go/internal/domain/routing"
)

// GetRouteQuery fetches one route with its stops
type GetRouteQuery struct {
	RouteID int
}

// GetRouteResponse carries the route aggregate
type GetRouteResponse struct {
	Route *routing.Route
}

// GetRouteHandler serves the route read endpoint
type GetRouteHandler struct {
	uow common.UnitOfWork
}

func NewGetRouteHandler(uow common.UnitOfWork) *GetRouteHandler {
	return &GetRouteHandler{uow: uow}
}

func (h *GetRouteHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetRouteQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetRouteQuery")
	}

	var response *GetRouteResponse
	err := h.uow.Execute(ctx, func(ctx context.Context, repos *common.Repositories) error {
		route, err := repos.Routes.FindByID(ctx, query.RouteID)
		if err != nil {
			return err
		}
		response = &GetRouteResponse{Route: route}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}
