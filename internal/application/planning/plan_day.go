package planning

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kaitori/dispatch-go/internal/application/common"
	approuting "github.com/kaitori/dispatch-go/internal/application/routing"
	"github.com/kaitori/dispatch-go/internal/domain/planning"
	"github.com/kaitori/dispatch-go/internal/domain/routing"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// PlanDayCommand runs the full daily pipeline: assignment, per-buyer
// route optimization, and optionally dispatch
type PlanDayCommand struct {
	Date         time.Time
	AutoDispatch bool // in addition to the auto-assign business rule
}

// PlanDayResponse summarizes a complete plan run
type PlanDayResponse struct {
	PlanRunID    string
	Date         time.Time
	PlacedItems  int
	SkippedItems []int
	Shortfalls   []ItemShortfall
	Buyers       []BuyerSummary
	Routes       []approuting.RouteSummary
	Dispatched   bool
	Message      string
}

// PlanDayHandler orchestrates one business day inside a single
// transaction. Concurrent plans for the same date serialize on the
// per-date lock the unit of work takes.
type PlanDayHandler struct {
	uow    common.UnitOfWork
	logger *zap.SugaredLogger
}

func NewPlanDayHandler(uow common.UnitOfWork, logger *zap.SugaredLogger) *PlanDayHandler {
	return &PlanDayHandler{uow: uow, logger: logger}
}

func (h *PlanDayHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*PlanDayCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PlanDayCommand")
	}

	var response *PlanDayResponse
	err := h.uow.ExecuteForDate(ctx, shared.DateOf(cmd.Date), func(ctx context.Context, repos *common.Repositories) error {
		snapshot, err := common.LoadPolicy(ctx, repos)
		if err != nil {
			return err
		}
		date := shared.DateOf(cmd.Date)

		assigned, err := assignForDate(ctx, repos, snapshot, date)
		if err != nil {
			return err
		}

		lists, err := repos.Lists.ListByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to load purchase lists: %w", err)
		}

		var routes []approuting.RouteSummary
		for _, list := range lists {
			summary, err := approuting.BuildRouteForList(ctx, repos, snapshot, h.logger, list)
			if err != nil {
				return err
			}
			if summary != nil {
				routes = append(routes, *summary)
			}
		}

		dispatched := false
		if cmd.AutoDispatch || snapshot.AutoAssign {
			if err := dispatchRoutes(ctx, repos, routes); err != nil {
				return err
			}
			dispatched = len(routes) > 0
		}

		response = &PlanDayResponse{
			PlanRunID:    assigned.PlanRunID,
			Date:         date,
			PlacedItems:  assigned.PlacedItems,
			SkippedItems: assigned.SkippedItems,
			Shortfalls:   assigned.Shortfalls,
			Buyers:       assigned.Buyers,
			Routes:       routes,
			Dispatched:   dispatched,
			Message: fmt.Sprintf("%s の買付計画を作成しました（割当%d件・ルート%d本）",
				date.Format("2006-01-02"), assigned.PlacedItems, len(routes)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Infow("day planned",
		"plan_run_id", response.PlanRunID,
		"date", response.Date.Format("2006-01-02"),
		"placed", response.PlacedItems,
		"routes", len(response.Routes),
		"dispatched", response.Dispatched)
	return response, nil
}

// dispatchRoutes moves freshly built routes and their lists into
// execution
func dispatchRoutes(ctx context.Context, repos *common.Repositories, routes []approuting.RouteSummary) error {
	for _, summary := range routes {
		route, err := repos.Routes.FindByID(ctx, summary.RouteID)
		if err != nil {
			return err
		}
		if route.Status != routing.RouteNotStarted {
			continue
		}
		if err := repos.Routes.UpdateStatus(ctx, route.RouteID, routing.RouteInProgress); err != nil {
			return fmt.Errorf("failed to dispatch route %d: %w", route.RouteID, err)
		}
		if err := repos.Lists.UpdateStatus(ctx, route.ListID, planning.ListInProgress); err != nil {
			return fmt.Errorf("failed to dispatch list %d: %w", route.ListID, err)
		}
	}
	return nil
}
