package routing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kaitori/dispatch-go/internal/application/common"
	"github.com/kaitori/dispatch-go/internal/domain/ordering"
	"github.com/kaitori/dispatch-go/internal/domain/planning"
	"github.com/kaitori/dispatch-go/internal/domain/policy"
	"github.com/kaitori/dispatch-go/internal/domain/routing"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// GenerateRoutesCommand builds or rebuilds a route for every purchase
// list of the date
type GenerateRoutesCommand struct {
	Date time.Time
}

// RouteSummary is the per-route outcome of a generation run
type RouteSummary struct {
	RouteID              int
	ListID               int
	StaffID              int
	Stops                int
	TotalDistanceKm      float64
	EstimatedTimeMinutes int
}

// GenerateRoutesResponse summarizes a generation run
type GenerateRoutesResponse struct {
	Date    time.Time
	Routes  []RouteSummary
	Message string
}

// GenerateRoutesHandler orders each buyer's stops and persists the
// resulting routes
type GenerateRoutesHandler struct {
	uow    common.UnitOfWork
	logger *zap.SugaredLogger
}

func NewGenerateRoutesHandler(uow common.UnitOfWork, logger *zap.SugaredLogger) *GenerateRoutesHandler {
	return &GenerateRoutesHandler{uow: uow, logger: logger}
}

func (h *GenerateRoutesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*GenerateRoutesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GenerateRoutesCommand")
	}

	var response *GenerateRoutesResponse
	err := h.uow.ExecuteForDate(ctx, shared.DateOf(cmd.Date), func(ctx context.Context, repos *common.Repositories) error {
		snapshot, err := common.LoadPolicy(ctx, repos)
		if err != nil {
			return err
		}
		date := shared.DateOf(cmd.Date)

		lists, err := repos.Lists.ListByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to load purchase lists: %w", err)
		}

		var summaries []RouteSummary
		for _, list := range lists {
			summary, err := BuildRouteForList(ctx, repos, snapshot, h.logger, list)
			if err != nil {
				return err
			}
			if summary != nil {
				summaries = append(summaries, *summary)
			}
		}

		response = &GenerateRoutesResponse{
			Date:    date,
			Routes:  summaries,
			Message: fmt.Sprintf("%d名分の買付ルートを生成しました", len(summaries)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Infow("routes generated",
		"date", response.Date.Format("2006-01-02"),
		"routes", len(response.Routes))
	return response, nil
}

// BuildRouteForList runs the optimization pipeline for one purchase list
// and persists the result, reusing the list's existing route row when
// present. Returns nil when the list has no remaining tasks to route.
func BuildRouteForList(ctx context.Context, repos *common.Repositories, snapshot *policy.Snapshot, logger *zap.SugaredLogger, list *planning.PurchaseList) (*RouteSummary, error) {
	plans, err := stopPlansForList(ctx, repos, list)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, nil
	}

	storeIDs := make([]int, 0, len(plans))
	for _, p := range plans {
		storeIDs = append(storeIDs, p.StoreID)
	}
	matrix, err := loadMatrix(ctx, repos, storeIDs)
	if err != nil {
		return nil, err
	}

	member, err := repos.Staff.FindByID(ctx, list.StaffID)
	if err != nil {
		return nil, err
	}
	start := member.StartPoint(snapshot.DefaultStartLocation)

	optimizer := routing.NewOptimizer(matrix, start)
	tour, err := optimizer.Order(ctx, plans, snapshot.OptimizationPriority,
		list.PurchaseDate.Weekday(), snapshot.RouteStartMinute)
	if err != nil {
		return nil, err
	}

	schedule := routing.Simulate(matrix, start, tour, list.PurchaseDate, snapshot.RouteStartMinute)
	if capMinutes := snapshot.MaxRouteTimeHours * 60; capMinutes > 0 && schedule.EstimatedTimeMinutes > capMinutes {
		logger.Warnw("route exceeds the time cap",
			"list_id", list.ListID,
			"staff_id", list.StaffID,
			"estimated_minutes", schedule.EstimatedTimeMinutes,
			"cap_minutes", capMinutes)
	}

	route, err := repos.Routes.FindByListID(ctx, list.ListID)
	if err != nil {
		return nil, err
	}
	if route == nil {
		route, err = routing.NewRoute(list.ListID, list.StaffID, list.PurchaseDate, start)
		if err != nil {
			return nil, err
		}
		route.IncludeReturn = snapshot.IncludeReturn
		if err := repos.Routes.Create(ctx, route); err != nil {
			return nil, fmt.Errorf("failed to create route for list %d: %w", list.ListID, err)
		}
	}

	stops := make([]*routing.RouteStop, 0, len(schedule.Stops))
	for _, s := range schedule.Stops {
		arrival := s.EstimatedArrival
		stops = append(stops, &routing.RouteStop{
			RouteID:          route.RouteID,
			StoreID:          s.Plan.StoreID,
			StopSequence:     s.Sequence,
			EstimatedArrival: &arrival,
			ItemsToPurchase:  s.Plan.ItemIDs,
			ItemsCount:       s.Plan.TotalQuantity,
			Status:           routing.StopPending,
		})
	}
	if err := repos.Routes.ReplaceStops(ctx, route.RouteID, stops); err != nil {
		return nil, fmt.Errorf("failed to replace stops of route %d: %w", route.RouteID, err)
	}

	route.TotalDistanceKm = schedule.TotalDistanceKm
	route.EstimatedTimeMinutes = schedule.EstimatedTimeMinutes
	route.StartLocation = start
	if err := repos.Routes.UpdateTotals(ctx, route); err != nil {
		return nil, fmt.Errorf("failed to update route %d totals: %w", route.RouteID, err)
	}

	if list.Status == planning.ListDraft {
		list.Status = planning.ListAssigned
		if err := repos.Lists.UpdateStatus(ctx, list.ListID, planning.ListAssigned); err != nil {
			return nil, fmt.Errorf("failed to update list %d status: %w", list.ListID, err)
		}
	}

	routedItems := make([]int, 0, len(plans))
	for _, p := range plans {
		routedItems = append(routedItems, p.ItemIDs...)
	}
	if err := advanceRoutedOrders(ctx, repos, routedItems); err != nil {
		return nil, err
	}

	return &RouteSummary{
		RouteID:              route.RouteID,
		ListID:               list.ListID,
		StaffID:              list.StaffID,
		Stops:                len(stops),
		TotalDistanceKm:      route.TotalDistanceKm,
		EstimatedTimeMinutes: route.EstimatedTimeMinutes,
	}, nil
}

// advanceRoutedOrders moves orders whose items now sit on a persisted
// route from assigned to in_progress
func advanceRoutedOrders(ctx context.Context, repos *common.Repositories, itemIDs []int) error {
	orders, err := repos.Orders.ListOrdersOfItems(ctx, itemIDs)
	if err != nil {
		return fmt.Errorf("failed to load orders of routed items: %w", err)
	}
	for _, order := range orders {
		if order.Status != ordering.OrderAssigned {
			continue
		}
		if err := repos.Orders.UpdateStatus(ctx, order.OrderID, ordering.OrderInProgress); err != nil {
			return fmt.Errorf("failed to advance order %d: %w", order.OrderID, err)
		}
	}
	return nil
}

// stopPlansForList groups the list's remaining buy tasks by store.
// Purchased, failed and skipped tasks no longer route.
func stopPlansForList(ctx context.Context, repos *common.Repositories, list *planning.PurchaseList) ([]routing.StopPlan, error) {
	type group struct {
		itemIDs  []int
		quantity int
	}
	groups := make(map[int]*group)
	var order []int
	for _, task := range list.Items {
		if task.Status != planning.PurchasePending && task.Status != planning.PurchaseInProgress {
			continue
		}
		g, ok := groups[task.StoreID]
		if !ok {
			g = &group{}
			groups[task.StoreID] = g
			order = append(order, task.StoreID)
		}
		g.itemIDs = append(g.itemIDs, task.ItemID)
		g.quantity += task.QuantityToPurchase
	}
	if len(order) == 0 {
		return nil, nil
	}

	stores, err := repos.Stores.ListByIDs(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to load route stores: %w", err)
	}
	byID := make(map[int]int, len(stores))
	for i, s := range stores {
		byID[s.StoreID] = i
	}

	plans := make([]routing.StopPlan, 0, len(order))
	for _, storeID := range order {
		g := groups[storeID]
		plan := routing.StopPlan{
			StoreID:       storeID,
			ItemIDs:       g.itemIDs,
			TotalQuantity: g.quantity,
		}
		if idx, ok := byID[storeID]; ok {
			store := stores[idx]
			plan.Location = store.Location
			plan.OpeningHours = store.OpeningHours
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// loadMatrix builds the in-memory distance lookup from cached edges plus
// the known coordinates of the involved stores.
func loadMatrix(ctx context.Context, repos *common.Repositories, storeIDs []int) (*routing.Matrix, error) {
	edges, err := repos.Matrix.ListAmong(ctx, storeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load distance matrix: %w", err)
	}
	stores, err := repos.Stores.ListByIDs(ctx, storeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load matrix stores: %w", err)
	}
	locations := make(map[int]shared.Coordinate, len(stores))
	for _, s := range stores {
		if s.HasLocation() {
			locations[s.StoreID] = *s.Location
		}
	}
	return routing.NewMatrix(edges, locations), nil
}
