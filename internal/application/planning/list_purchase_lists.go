package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/kaitori/dispatch-go/internal/application/common"
	"github.com/kaitori/dispatch-go/internal/domain/planning"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// PurchaseListsByDateQuery fetches every buyer's list for a date
type PurchaseListsByDateQuery struct {
	Date time.Time
}

// PurchaseListsByDateResponse carries the list aggregates
type PurchaseListsByDateResponse struct {
	Date  time.Time
	Lists []*planning.PurchaseList
}

// PurchaseListsByDateHandler serves the purchase-list read endpoint
type PurchaseListsByDateHandler struct {
	uow common.UnitOfWork
}

func NewPurchaseListsByDateHandler(uow common.UnitOfWork) *PurchaseListsByDateHandler {
	return &PurchaseListsByDateHandler{uow: uow}
}

func (h *PurchaseListsByDateHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*PurchaseListsByDateQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PurchaseListsByDateQuery")
	}

	date := shared.DateOf(query.Date)
	var response *PurchaseListsByDateResponse
	err := h.uow.Execute(ctx, func(ctx context.Context, repos *common.Repositories) error {
		lists, err := repos.Lists.ListByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to load purchase lists: %w", err)
		}
		response = &PurchaseListsByDateResponse{Date: date, Lists: lists}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}
