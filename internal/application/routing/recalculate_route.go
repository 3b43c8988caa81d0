package routing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kaitori/dispatch-go/internal/application/common"
	"github.com/kaitori/dispatch-go/internal/domain/execution"
)

// RecalculateRouteCommand re-runs the optimizer for an existing route,
// routing only the list's remaining buy tasks
type RecalculateRouteCommand struct {
	RouteID      int
	ActorStaffID int
}

// RecalculateRouteResponse reports the rebuilt route
type RecalculateRouteResponse struct {
	Route   RouteSummary
	Message string
}

// RecalculateRouteHandler rebuilds a route in place. The route row and
// its id survive; stops are deleted and rebuilt.
type RecalculateRouteHandler struct {
	uow    common.UnitOfWork
	logger *zap.SugaredLogger
}

func NewRecalculateRouteHandler(uow common.UnitOfWork, logger *zap.SugaredLogger) *RecalculateRouteHandler {
	return &RecalculateRouteHandler{uow: uow, logger: logger}
}

func (h *RecalculateRouteHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RecalculateRouteCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RecalculateRouteCommand")
	}

	var response *RecalculateRouteResponse
	err := h.uow.Execute(ctx, func(ctx context.Context, repos *common.Repositories) error {
		route, err := repos.Routes.FindByID(ctx, cmd.RouteID)
		if err != nil {
			return err
		}

		actor, err := repos.Staff.FindByID(ctx, cmd.ActorStaffID)
		if err != nil {
			return err
		}
		if err := execution.AuthorizeRouteUpdate(actor, route.RouteID, route.StaffID); err != nil {
			return err
		}

		snapshot, err := common.LoadPolicy(ctx, repos)
		if err != nil {
			return err
		}
		list, err := repos.Lists.FindByID(ctx, route.ListID)
		if err != nil {
			return err
		}

		summary, err := BuildRouteForList(ctx, repos, snapshot, h.logger, list)
		if err != nil {
			return err
		}
		if summary == nil {
			return fmt.Errorf("route %d has no remaining tasks to route", route.RouteID)
		}

		response = &RecalculateRouteResponse{
			Route:   *summary,
			Message: fmt.Sprintf("ルート%dを再計算しました（%d店舗）", summary.RouteID, summary.Stops),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Infow("route recalculated",
		"route_id", response.Route.RouteID,
		"stops", response.Route.Stops,
		"distance_km", response.Route.TotalDistanceKm)
	return response, nil
}
