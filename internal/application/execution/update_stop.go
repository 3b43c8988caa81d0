package execution

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kaitori/dispatch-go/internal/application/common"
	"github.com/kaitori/dispatch-go/internal/domain/execution"
	"github.com/kaitori/dispatch-go/internal/domain/ordering"
	"github.com/kaitori/dispatch-go/internal/domain/planning"
	"github.com/kaitori/dispatch-go/internal/domain/routing"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
	"github.com/kaitori/dispatch-go/internal/domain/staff"
)

// UpdateStopCommand records field progress on one route stop. Completing
// a stop cascades through buy tasks, order items and orders.
type UpdateStopCommand struct {
	RouteID         int
	StopID          int
	ActorStaffID    int
	Status          routing.StopStatus // empty leaves the status untouched
	ActualArrival   *time.Time
	ActualDeparture *time.Time
}

// UpdateStopResponse reports the stop and route state after the update
type UpdateStopResponse struct {
	RouteID        int
	StopID         int
	StopStatus     routing.StopStatus
	RouteStatus    routing.RouteStatus
	RouteCompleted bool
	Message        string
}

// UpdateStopHandler applies a stop update under the route authorization
// matrix: buyers touch only their own route, supervisors and admins any.
type UpdateStopHandler struct {
	uow    common.UnitOfWork
	logger *zap.SugaredLogger
}

func NewUpdateStopHandler(uow common.UnitOfWork, logger *zap.SugaredLogger) *UpdateStopHandler {
	return &UpdateStopHandler{uow: uow, logger: logger}
}

func (h *UpdateStopHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UpdateStopCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UpdateStopCommand")
	}

	var response *UpdateStopResponse
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

		stop, ok := route.StopByID(cmd.StopID)
		if !ok {
			return shared.NewNotFoundError("route_stop", cmd.StopID)
		}

		if cmd.ActualArrival != nil {
			t := cmd.ActualArrival.UTC()
			stop.ActualArrival = &t
		}
		if cmd.ActualDeparture != nil {
			t := cmd.ActualDeparture.UTC()
			stop.ActualDeparture = &t
		}
		if cmd.Status != "" {
			stop.Status = cmd.Status
		}

		// First field activity moves the route and its buyer into execution
		if route.Status == routing.RouteNotStarted && stopActive(stop) {
			if err := route.Start(); err != nil {
				return err
			}
			if err := repos.Routes.UpdateStatus(ctx, route.RouteID, routing.RouteInProgress); err != nil {
				return fmt.Errorf("failed to start route %d: %w", route.RouteID, err)
			}
			if err := repos.Lists.UpdateStatus(ctx, route.ListID, planning.ListInProgress); err != nil {
				return fmt.Errorf("failed to start list %d: %w", route.ListID, err)
			}
			if err := repos.Staff.UpdateStatus(ctx, route.StaffID, staff.StatusEnRoute); err != nil {
				return fmt.Errorf("failed to update staff %d status: %w", route.StaffID, err)
			}
		}

		if err := repos.Routes.UpdateStop(ctx, stop); err != nil {
			return fmt.Errorf("failed to update stop %d: %w", stop.StopID, err)
		}

		if stop.Status == routing.StopCompleted {
			if err := completeStopTasks(ctx, repos, route, stop); err != nil {
				return err
			}
		}

		completed := route.AllStopsCompleted()
		if completed && route.Status != routing.RouteCompleted {
			route.Status = routing.RouteCompleted
			if err := repos.Routes.UpdateStatus(ctx, route.RouteID, routing.RouteCompleted); err != nil {
				return fmt.Errorf("failed to complete route %d: %w", route.RouteID, err)
			}
			if err := repos.Lists.UpdateStatus(ctx, route.ListID, planning.ListCompleted); err != nil {
				return fmt.Errorf("failed to complete list %d: %w", route.ListID, err)
			}
			if err := repos.Staff.UpdateStatus(ctx, route.StaffID, staff.StatusIdle); err != nil {
				return fmt.Errorf("failed to update staff %d status: %w", route.StaffID, err)
			}
		}

		message := fmt.Sprintf("店舗%dの進捗を更新しました", stop.StoreID)
		if completed {
			message = "全店舗の買付が完了しました。お疲れさまでした"
		}
		response = &UpdateStopResponse{
			RouteID:        route.RouteID,
			StopID:         stop.StopID,
			StopStatus:     stop.Status,
			RouteStatus:    route.Status,
			RouteCompleted: completed,
			Message:        message,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Infow("stop updated",
		"route_id", response.RouteID,
		"stop_id", response.StopID,
		"stop_status", response.StopStatus,
		"route_status", response.RouteStatus)
	return response, nil
}

func stopActive(stop *routing.RouteStop) bool {
	return stop.Status == routing.StopCurrent ||
		stop.Status == routing.StopCompleted ||
		stop.ActualArrival != nil
}

// completeStopTasks marks the stop's buy tasks purchased and cascades to
// order items and orders. An order item split across stores flips only
// when all of its buy tasks are purchased.
func completeStopTasks(ctx context.Context, repos *common.Repositories, route *routing.Route, stop *routing.RouteStop) error {
	if len(stop.ItemsToPurchase) == 0 {
		return nil
	}

	tasks, err := repos.Lists.ListItemsByOrderItems(ctx, stop.ItemsToPurchase)
	if err != nil {
		return fmt.Errorf("failed to load buy tasks of stop %d: %w", stop.StopID, err)
	}

	for _, task := range tasks {
		if task.ListID != route.ListID || task.StoreID != stop.StoreID {
			continue
		}
		if task.Status == planning.PurchasePurchased {
			continue
		}
		task.Status = planning.PurchasePurchased
		if err := repos.Lists.UpdateItemStatus(ctx, task.ListItemID, planning.PurchasePurchased); err != nil {
			return fmt.Errorf("failed to mark task %d purchased: %w", task.ListItemID, err)
		}
	}

	byItem := make(map[int][]planning.PurchaseStatus)
	for _, task := range tasks {
		byItem[task.ItemID] = append(byItem[task.ItemID], task.Status)
	}
	purchased := make(map[int]struct{})
	for _, itemID := range stop.ItemsToPurchase {
		statuses := byItem[itemID]
		done := len(statuses) > 0
		for _, s := range statuses {
			if s != planning.PurchasePurchased {
				done = false
				break
			}
		}
		if done {
			purchased[itemID] = struct{}{}
			if err := repos.Orders.UpdateItemStatus(ctx, itemID, ordering.ItemPurchased); err != nil {
				return fmt.Errorf("failed to mark item %d purchased: %w", itemID, err)
			}
		}
	}

	return advanceCompletedOrders(ctx, repos, stop.ItemsToPurchase, purchased)
}

// advanceCompletedOrders recomputes order status as items resolve:
// completed when everything is purchased, failed when nothing was
// bought, partially completed when purchases mix with failures or
// still-open items mid-route.
func advanceCompletedOrders(ctx context.Context, repos *common.Repositories, itemIDs []int, justPurchased map[int]struct{}) error {
	orders, err := repos.Orders.ListOrdersOfItems(ctx, itemIDs)
	if err != nil {
		return fmt.Errorf("failed to load orders of completed items: %w", err)
	}

	for _, order := range orders {
		purchased, failed, open := 0, 0, 0
		for _, item := range order.Items {
			if item.IsBundle {
				continue
			}
			status := item.Status
			if _, ok := justPurchased[item.ItemID]; ok {
				status = ordering.ItemPurchased
			}
			switch status {
			case ordering.ItemPurchased:
				purchased++
			case ordering.ItemFailed, ordering.ItemDiscontinued, ordering.ItemOutOfStock:
				failed++
			default:
				open++
			}
		}
		var next ordering.OrderStatus
		switch {
		case open == 0 && failed == 0:
			next = ordering.OrderCompleted
		case open == 0 && purchased == 0:
			next = ordering.OrderFailed
		case open == 0:
			next = ordering.OrderPartiallyCompleted
		case purchased > 0:
			next = ordering.OrderPartiallyCompleted
		default:
			continue
		}
		if order.Status == next {
			continue
		}
		if err := repos.Orders.UpdateStatus(ctx, order.OrderID, next); err != nil {
			return fmt.Errorf("failed to advance order %d: %w", order.OrderID, err)
		}
	}
	return nil
}
