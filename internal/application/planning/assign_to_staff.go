package planning

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kaitori/dispatch-go/internal/application/common"
	appordering "github.com/kaitori/dispatch-go/internal/application/ordering"
	"github.com/kaitori/dispatch-go/internal/domain/planning"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
	"github.com/kaitori/dispatch-go/internal/domain/staff"
)

// AssignToStaffCommand routes the date's pending items to one specific
// buyer, filling up to their remaining capacity
type AssignToStaffCommand struct {
	StaffID int
	Date    time.Time
}

// AssignToStaffResponse summarizes a specific-staff assignment
type AssignToStaffResponse struct {
	StaffID      int
	Date         time.Time
	ListID       int
	PlacedItems  int
	SkippedItems []int
	Message      string
}

// AssignToStaffHandler handles manual assignment to a chosen buyer.
// Store scoring additionally weighs distance from the buyer's start
// point.
type AssignToStaffHandler struct {
	uow    common.UnitOfWork
	logger *zap.SugaredLogger
}

func NewAssignToStaffHandler(uow common.UnitOfWork, logger *zap.SugaredLogger) *AssignToStaffHandler {
	return &AssignToStaffHandler{uow: uow, logger: logger}
}

func (h *AssignToStaffHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AssignToStaffCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AssignToStaffCommand")
	}

	var response *AssignToStaffResponse
	err := h.uow.ExecuteForDate(ctx, shared.DateOf(cmd.Date), func(ctx context.Context, repos *common.Repositories) error {
		snapshot, err := common.LoadPolicy(ctx, repos)
		if err != nil {
			return err
		}
		date := shared.DateOf(cmd.Date)

		member, err := repos.Staff.FindByID(ctx, cmd.StaffID)
		if err != nil {
			return err
		}
		if !member.IsActive || member.Role != staff.RoleBuyer {
			return shared.NewPolicyError(fmt.Sprintf("staff %d is not an active buyer", cmd.StaffID))
		}

		loads, err := repos.Lists.CountItems(ctx, []int{member.StaffID}, date)
		if err != nil {
			return fmt.Errorf("failed to load buyer workload: %w", err)
		}
		load := loads[member.StaffID]
		if load >= member.MaxDailyCapacity {
			return shared.NewCapacityExhaustedError(member.StaffID, member.MaxDailyCapacity)
		}

		bundles, err := repos.Orders.ListPendingBundles(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to load pending bundles: %w", err)
		}
		if len(bundles) > 0 {
			if _, err := appordering.ExpandPendingBundles(ctx, repos, bundles); err != nil {
				return err
			}
		}

		items, err := repos.Orders.ListPendingItems(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to load pending items: %w", err)
		}
		if len(items) == 0 {
			response = &AssignToStaffResponse{
				StaffID: member.StaffID,
				Date:    date,
				Message: "割り当て対象の注文がありません",
			}
			return nil
		}

		data, _, err := loadCatalog(ctx, repos, uniqueSKUs(items))
		if err != nil {
			return err
		}

		start := member.StartPoint(snapshot.DefaultStartLocation)
		allocations := planning.NewAllocatorForBuyer(data, start).Allocate(allocatableSlice(items))

		// Greedy fill in item order until the capacity projection fails
		var placed []planning.PlacedItem
		var skipped []int
		for _, item := range items {
			alloc := allocations[item.ItemID]
			if len(alloc.Allocations) == 0 {
				skipped = append(skipped, item.ItemID)
				continue
			}
			if load+len(alloc.Allocations) > member.MaxDailyCapacity {
				skipped = append(skipped, item.ItemID)
				continue
			}
			load += len(alloc.Allocations)
			placed = append(placed, planning.PlacedItem{
				ItemID:      item.ItemID,
				StaffID:     member.StaffID,
				Allocations: alloc.Allocations,
				Remaining:   alloc.Remaining,
			})
		}

		summaries, err := persistPlacements(ctx, repos, date, placed, []*staff.Staff{member})
		if err != nil {
			return err
		}
		if err := advanceOrders(ctx, repos, placed); err != nil {
			return err
		}

		listID := 0
		if len(summaries) > 0 {
			listID = summaries[0].ListID
		}
		response = &AssignToStaffResponse{
			StaffID:      member.StaffID,
			Date:         date,
			ListID:       listID,
			PlacedItems:  len(placed),
			SkippedItems: skipped,
			Message: fmt.Sprintf("%sさんに%d件の商品を割り当てました（スキップ: %d件）",
				member.Name, len(placed), len(skipped)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Infow("staff assigned",
		"staff_id", response.StaffID,
		"date", response.Date.Format("2006-01-02"),
		"placed", response.PlacedItems,
		"skipped", len(response.SkippedItems))
	return response, nil
}
