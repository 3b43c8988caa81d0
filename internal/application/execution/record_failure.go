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
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// RecordFailureCommand captures why a buy task could not be completed.
// The planner never auto-retries; the record exists for operational
// analytics and manual follow-up.
type RecordFailureCommand struct {
	ListItemID         int
	ActorStaffID       int
	FailureType        execution.FailureType
	AlternativeStoreID *int
	Note               string
}

// RecordFailureResponse reports the stored failure
type RecordFailureResponse struct {
	FailureID  int
	ListItemID int
	ItemID     int
	Message    string
}

// RecordFailureHandler persists the failure and flips the buy task and
// its order item to failed
type RecordFailureHandler struct {
	uow    common.UnitOfWork
	logger *zap.SugaredLogger
}

func NewRecordFailureHandler(uow common.UnitOfWork, logger *zap.SugaredLogger) *RecordFailureHandler {
	return &RecordFailureHandler{uow: uow, logger: logger}
}

func (h *RecordFailureHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RecordFailureCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RecordFailureCommand")
	}

	var response *RecordFailureResponse
	err := h.uow.Execute(ctx, func(ctx context.Context, repos *common.Repositories) error {
		task, err := repos.Lists.FindItemByID(ctx, cmd.ListItemID)
		if err != nil {
			return err
		}
		list, err := repos.Lists.FindByID(ctx, task.ListID)
		if err != nil {
			return err
		}

		actor, err := repos.Staff.FindByID(ctx, cmd.ActorStaffID)
		if err != nil {
			return err
		}
		if !execution.CanUpdateRoute(actor, list.StaffID) {
			return shared.NewForbiddenError(actor.StaffID,
				fmt.Sprintf("staff %d may not record failures on list %d", actor.StaffID, list.ListID))
		}

		failure, err := execution.NewPurchaseFailure(task.ListItemID, actor.StaffID, cmd.FailureType, time.Now().UTC())
		if err != nil {
			return err
		}
		failure.AlternativeStoreID = cmd.AlternativeStoreID
		failure.Note = cmd.Note
		if err := repos.Failures.Record(ctx, failure); err != nil {
			return fmt.Errorf("failed to record purchase failure: %w", err)
		}

		if err := repos.Lists.UpdateItemStatus(ctx, task.ListItemID, planning.PurchaseFailed); err != nil {
			return fmt.Errorf("failed to mark task %d failed: %w", task.ListItemID, err)
		}
		if err := repos.Orders.UpdateItemStatus(ctx, task.ItemID, ordering.ItemFailed); err != nil {
			return fmt.Errorf("failed to mark item %d failed: %w", task.ItemID, err)
		}

		response = &RecordFailureResponse{
			FailureID:  failure.FailureID,
			ListItemID: task.ListItemID,
			ItemID:     task.ItemID,
			Message:    fmt.Sprintf("買付失敗を記録しました（%s）", cmd.FailureType),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Infow("purchase failure recorded",
		"failure_id", response.FailureID,
		"list_item_id", response.ListItemID,
		"failure_type", cmd.FailureType)
	return response, nil
}
