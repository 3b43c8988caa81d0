package planning

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kaitori/dispatch-go/internal/application/common"
	appordering "github.com/kaitori/dispatch-go/internal/application/ordering"
	"github.com/kaitori/dispatch-go/internal/domain/ordering"
	"github.com/kaitori/dispatch-go/internal/domain/planning"
	"github.com/kaitori/dispatch-go/internal/domain/policy"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
	"github.com/kaitori/dispatch-go/internal/domain/staff"
)

// AssignDayCommand distributes the date's pending order items across
// assignable buyers
type AssignDayCommand struct {
	Date time.Time
}

// BuyerSummary is the per-buyer outcome of an assignment run
type BuyerSummary struct {
	StaffID     int
	Name        string
	ListID      int
	AddedTasks  int
	TotalTasks  int
	TotalStores int
}

// ItemShortfall reports a partially fulfillable item: the coverable
// quantity was placed, the remainder found no store capacity.
type ItemShortfall struct {
	ItemID    int
	Remaining int
}

// AssignDayResponse summarizes an assignment run
type AssignDayResponse struct {
	PlanRunID    string
	Date         time.Time
	PlacedItems  int
	SkippedItems []int
	Shortfalls   []ItemShortfall
	Buyers       []BuyerSummary
	Message      string
}

// AssignDayHandler runs store allocation and buyer assignment for one
// business day inside a single transaction
type AssignDayHandler struct {
	uow    common.UnitOfWork
	logger *zap.SugaredLogger
}

func NewAssignDayHandler(uow common.UnitOfWork, logger *zap.SugaredLogger) *AssignDayHandler {
	return &AssignDayHandler{uow: uow, logger: logger}
}

func (h *AssignDayHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AssignDayCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AssignDayCommand")
	}

	var response *AssignDayResponse
	err := h.uow.ExecuteForDate(ctx, shared.DateOf(cmd.Date), func(ctx context.Context, repos *common.Repositories) error {
		snapshot, err := common.LoadPolicy(ctx, repos)
		if err != nil {
			return err
		}
		response, err = assignForDate(ctx, repos, snapshot, shared.DateOf(cmd.Date))
		return err
	})
	if err != nil {
		return nil, err
	}

	h.logger.Infow("day assigned",
		"plan_run_id", response.PlanRunID,
		"date", response.Date.Format("2006-01-02"),
		"placed", response.PlacedItems,
		"skipped", len(response.SkippedItems),
		"short", len(response.Shortfalls),
		"buyers", len(response.Buyers))
	return response, nil
}

// assignForDate is the transactional core of the day assignment, shared
// with the plan orchestrator.
func assignForDate(ctx context.Context, repos *common.Repositories, snapshot *policy.Snapshot, date time.Time) (*AssignDayResponse, error) {
	runID := uuid.NewString()

	// Late-flagged bundles are expanded before the pending read so their
	// children participate in this run
	bundles, err := repos.Orders.ListPendingBundles(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending bundles: %w", err)
	}
	if len(bundles) > 0 {
		if _, err := appordering.ExpandPendingBundles(ctx, repos, bundles); err != nil {
			return nil, err
		}
	}

	items, err := repos.Orders.ListPendingItems(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending items: %w", err)
	}
	if len(items) == 0 {
		return &AssignDayResponse{
			PlanRunID: runID,
			Date:      date,
			Message:   "割り当て対象の注文がありません",
		}, nil
	}

	data, locations, err := loadCatalog(ctx, repos, uniqueSKUs(items))
	if err != nil {
		return nil, err
	}
	allocations := planning.NewAllocator(data).Allocate(allocatableSlice(items))

	buyers, err := repos.Staff.ListAssignableBuyers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load buyers: %w", err)
	}
	if len(buyers) == 0 {
		return nil, shared.NewPolicyError("no assignable buyers available")
	}

	staffIDs := make([]int, 0, len(buyers))
	for _, b := range buyers {
		staffIDs = append(staffIDs, b.StaffID)
	}
	loads, err := repos.Lists.CountItems(ctx, staffIDs, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load buyer workloads: %w", err)
	}

	states := make([]*planning.BuyerState, 0, len(buyers))
	for _, b := range buyers {
		states = append(states, planning.NewBuyerState(
			b.StaffID, b.MaxDailyCapacity, loads[b.StaffID],
			b.StartPoint(snapshot.DefaultStartLocation)))
	}

	// Stable item order keeps repeated runs convergent
	ordered := make([]*planning.ItemAllocation, 0, len(items))
	for _, item := range items {
		ordered = append(ordered, allocations[item.ItemID])
	}

	result := planning.NewAssigner(states, locations, snapshot.DefaultStartLocation).Assign(ordered)

	summaries, err := persistPlacements(ctx, repos, date, result.Placed, buyers)
	if err != nil {
		return nil, err
	}
	if err := advanceOrders(ctx, repos, result.Placed); err != nil {
		return nil, err
	}

	var shortfalls []ItemShortfall
	for _, p := range result.Placed {
		if p.Remaining > 0 {
			shortfalls = append(shortfalls, ItemShortfall{ItemID: p.ItemID, Remaining: p.Remaining})
		}
	}

	message := fmt.Sprintf("%d件の商品を%d名のスタッフに割り当てました（スキップ: %d件）",
		len(result.Placed), len(summaries), len(result.Skipped))
	if len(shortfalls) > 0 {
		message += fmt.Sprintf("。%d件は店舗在庫の上限により一部のみ確保しました", len(shortfalls))
	}

	return &AssignDayResponse{
		PlanRunID:    runID,
		Date:         date,
		PlacedItems:  len(result.Placed),
		SkippedItems: result.Skipped,
		Shortfalls:   shortfalls,
		Buyers:       summaries,
		Message:      message,
	}, nil
}

// persistPlacements writes the placed items into per-buyer purchase
// lists, reusing an existing (staff, date) list when present. Fully
// covered order items move to assigned; a partially covered item keeps
// its pending status so the remainder is picked up once stock allows.
// Off-duty buyers who received work flip to idle.
func persistPlacements(ctx context.Context, repos *common.Repositories, date time.Time, placed []planning.PlacedItem, buyers []*staff.Staff) ([]BuyerSummary, error) {
	byStaff := make(map[int][]planning.PlacedItem)
	for _, p := range placed {
		byStaff[p.StaffID] = append(byStaff[p.StaffID], p)
	}

	members := make(map[int]*staff.Staff, len(buyers))
	for _, b := range buyers {
		members[b.StaffID] = b
	}

	touched := make([]int, 0, len(byStaff))
	for id := range byStaff {
		touched = append(touched, id)
	}
	sort.Ints(touched)

	var summaries []BuyerSummary
	for _, staffID := range touched {
		list, err := repos.Lists.FindByStaffAndDate(ctx, staffID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to load purchase list for staff %d: %w", staffID, err)
		}
		if list == nil {
			list, err = planning.NewPurchaseList(staffID, date)
			if err != nil {
				return nil, err
			}
			if err := repos.Lists.Create(ctx, list); err != nil {
				return nil, fmt.Errorf("failed to create purchase list for staff %d: %w", staffID, err)
			}
		}

		before := len(list.Items)
		for _, item := range byStaff[staffID] {
			for _, alloc := range item.Allocations {
				if _, err := list.Append(item.ItemID, alloc.StoreID, alloc.Qty); err != nil {
					return nil, err
				}
			}
			if item.Remaining == 0 {
				if err := repos.Orders.UpdateItemStatus(ctx, item.ItemID, ordering.ItemAssigned); err != nil {
					return nil, fmt.Errorf("failed to mark item %d assigned: %w", item.ItemID, err)
				}
			}
		}

		if err := repos.Lists.AppendItems(ctx, list.ListID, list.Items[before:]); err != nil {
			return nil, fmt.Errorf("failed to append tasks to list %d: %w", list.ListID, err)
		}
		list.RecountTotals()
		if err := repos.Lists.UpdateTotals(ctx, list); err != nil {
			return nil, fmt.Errorf("failed to update list %d totals: %w", list.ListID, err)
		}
		if list.Status == planning.ListDraft {
			list.Status = planning.ListAssigned
			if err := repos.Lists.UpdateStatus(ctx, list.ListID, planning.ListAssigned); err != nil {
				return nil, fmt.Errorf("failed to update list %d status: %w", list.ListID, err)
			}
		}

		name := ""
		if member, ok := members[staffID]; ok {
			name = member.Name
			if member.Status == staff.StatusOffDuty {
				if err := repos.Staff.UpdateStatus(ctx, staffID, staff.StatusIdle); err != nil {
					return nil, fmt.Errorf("failed to update staff %d status: %w", staffID, err)
				}
			}
		}

		summaries = append(summaries, BuyerSummary{
			StaffID:     staffID,
			Name:        name,
			ListID:      list.ListID,
			AddedTasks:  len(list.Items) - before,
			TotalTasks:  list.TotalItems,
			TotalStores: list.TotalStores,
		})
	}

	return summaries, nil
}

// advanceOrders moves orders whose non-bundle items are all fully
// placed to assigned, and partially placed orders to processing. An
// item with a capacity shortfall counts as still pending.
func advanceOrders(ctx context.Context, repos *common.Repositories, placed []planning.PlacedItem) error {
	if len(placed) == 0 {
		return nil
	}
	itemIDs := make([]int, 0, len(placed))
	fully := make(map[int]struct{}, len(placed))
	for _, p := range placed {
		itemIDs = append(itemIDs, p.ItemID)
		if p.Remaining == 0 {
			fully[p.ItemID] = struct{}{}
		}
	}

	orders, err := repos.Orders.ListOrdersOfItems(ctx, itemIDs)
	if err != nil {
		return fmt.Errorf("failed to load orders of placed items: %w", err)
	}

	for _, order := range orders {
		pending := 0
		for _, item := range order.Items {
			if item.IsBundle || item.Status != ordering.ItemPending {
				continue
			}
			if _, ok := fully[item.ItemID]; !ok {
				pending++
			}
		}
		next := ordering.OrderAssigned
		if pending > 0 {
			next = ordering.OrderProcessing
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
