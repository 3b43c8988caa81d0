package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kaitori/dispatch-go/internal/application/common"
	appexecution "github.com/kaitori/dispatch-go/internal/application/execution"
	appordering "github.com/kaitori/dispatch-go/internal/application/ordering"
	appplanning "github.com/kaitori/dispatch-go/internal/application/planning"
	approuting "github.com/kaitori/dispatch-go/internal/application/routing"
	"github.com/kaitori/dispatch-go/internal/domain/execution"
	"github.com/kaitori/dispatch-go/internal/domain/routing"
)

// Handlers contains the HTTP handlers for the dispatch API
type Handlers struct {
	mediator common.Mediator
	logger   *zap.SugaredLogger
}

// NewHandlers creates new HTTP handlers
func NewHandlers(mediator common.Mediator, logger *zap.SugaredLogger) *Handlers {
	return &Handlers{mediator: mediator, logger: logger}
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return date, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, c.Param(name))
	}
	return value, nil
}

// IngestOrder handles POST /api/v1/orders
func (h *Handlers) IngestOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ExternalOrderID string     `json:"external_order_id" binding:"required"`
			SourceChannel   string     `json:"source_channel"`
			CustomerName    string     `json:"customer_name"`
			ReceivedAt      *time.Time `json:"received_at"`
			Items           []struct {
				SKU         string           `json:"sku" binding:"required"`
				ProductName string           `json:"product_name"`
				Quantity    int              `json:"quantity" binding:"required,min=1"`
				UnitPrice   *decimal.Decimal `json:"unit_price"`
				IsBundle    bool             `json:"is_bundle"`
				Priority    string           `json:"priority"`
			} `json:"items" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}

		cmd := &appordering.IngestOrderCommand{
			ExternalOrderID: req.ExternalOrderID,
			SourceChannel:   req.SourceChannel,
			CustomerName:    req.CustomerName,
		}
		if req.ReceivedAt != nil {
			cmd.ReceivedAt = req.ReceivedAt.UTC()
		}
		for _, item := range req.Items {
			cmd.Items = append(cmd.Items, appordering.IngestItemInput{
				SKU:         item.SKU,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				IsBundle:    item.IsBundle,
				Priority:    item.Priority,
			})
		}

		result, err := h.mediator.Send(c.Request.Context(), cmd)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := result.(*appordering.IngestOrderResponse)
		c.JSON(http.StatusCreated, gin.H{
			"order_id":             resp.OrderID,
			"target_purchase_date": resp.TargetPurchaseDate.Format(dateLayout),
			"item_count":           resp.ItemCount,
			"expanded_children":    resp.ExpandedChildren,
		})
	}
}

// AssignPlan handles POST /api/v1/plan/assign. A staff_id in the body
// assigns the date's items to that buyer only.
func (h *Handlers) AssignPlan() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Date    string `json:"date" binding:"required"`
			StaffID *int   `json:"staff_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}
		date, err := parseDate(req.Date)
		if err != nil {
			respondBadRequest(c, err)
			return
		}

		if req.StaffID != nil {
			result, err := h.mediator.Send(c.Request.Context(),
				&appplanning.AssignToStaffCommand{StaffID: *req.StaffID, Date: date})
			if err != nil {
				respondError(c, err)
				return
			}
			resp := result.(*appplanning.AssignToStaffResponse)
			c.JSON(http.StatusOK, assignToStaffDTO{
				StaffID:      resp.StaffID,
				Date:         resp.Date.Format(dateLayout),
				ListID:       resp.ListID,
				PlacedItems:  resp.PlacedItems,
				SkippedItems: resp.SkippedItems,
				Message:      resp.Message,
			})
			return
		}

		result, err := h.mediator.Send(c.Request.Context(), &appplanning.AssignDayCommand{Date: date})
		if err != nil {
			respondError(c, err)
			return
		}
		resp := result.(*appplanning.AssignDayResponse)
		c.JSON(http.StatusOK, assignDayDTO{
			PlanRunID:    resp.PlanRunID,
			Date:         resp.Date.Format(dateLayout),
			PlacedItems:  resp.PlacedItems,
			SkippedItems: resp.SkippedItems,
			Shortfalls:   toShortfalls(resp.Shortfalls),
			Buyers:       toBuyerSummaries(resp.Buyers),
			Message:      resp.Message,
		})
	}
}

// GenerateRoutes handles POST /api/v1/plan/routes
func (h *Handlers) GenerateRoutes() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Date string `json:"date" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}
		date, err := parseDate(req.Date)
		if err != nil {
			respondBadRequest(c, err)
			return
		}

		result, err := h.mediator.Send(c.Request.Context(), &approuting.GenerateRoutesCommand{Date: date})
		if err != nil {
			respondError(c, err)
			return
		}
		resp := result.(*approuting.GenerateRoutesResponse)
		c.JSON(http.StatusOK, generateRoutesDTO{
			Date:    resp.Date.Format(dateLayout),
			Routes:  toRouteSummaries(resp.Routes),
			Message: resp.Message,
		})
	}
}

// DispatchPlan handles POST /api/v1/plan/dispatch: the full pipeline with
// dispatch of the built routes
func (h *Handlers) DispatchPlan() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Date string `json:"date" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}
		date, err := parseDate(req.Date)
		if err != nil {
			respondBadRequest(c, err)
			return
		}

		result, err := h.mediator.Send(c.Request.Context(),
			&appplanning.PlanDayCommand{Date: date, AutoDispatch: true})
		if err != nil {
			respondError(c, err)
			return
		}
		resp := result.(*appplanning.PlanDayResponse)
		c.JSON(http.StatusOK, planDayDTO{
			PlanRunID:    resp.PlanRunID,
			Date:         resp.Date.Format(dateLayout),
			PlacedItems:  resp.PlacedItems,
			SkippedItems: resp.SkippedItems,
			Shortfalls:   toShortfalls(resp.Shortfalls),
			Buyers:       toBuyerSummaries(resp.Buyers),
			Routes:       toRouteSummaries(resp.Routes),
			Dispatched:   resp.Dispatched,
			Message:      resp.Message,
		})
	}
}

// GetPurchaseLists handles GET /api/v1/purchase-lists?date=YYYY-MM-DD
func (h *Handlers) GetPurchaseLists() gin.HandlerFunc {
	return func(c *gin.Context) {
		date, err := parseDate(c.Query("date"))
		if err != nil {
			respondBadRequest(c, err)
			return
		}

		result, err := h.mediator.Send(c.Request.Context(), &appplanning.PurchaseListsByDateQuery{Date: date})
		if err != nil {
			respondError(c, err)
			return
		}
		resp := result.(*appplanning.PurchaseListsByDateResponse)
		lists := make([]purchaseListDTO, 0, len(resp.Lists))
		for _, list := range resp.Lists {
			lists = append(lists, toPurchaseListDTO(list))
		}
		c.JSON(http.StatusOK, gin.H{
			"date":  resp.Date.Format(dateLayout),
			"lists": lists,
		})
	}
}

// GetRoute handles GET /api/v1/routes/:route_id
func (h *Handlers) GetRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		routeID, err := intParam(c, "route_id")
		if err != nil {
			respondBadRequest(c, err)
			return
		}

		result, err := h.mediator.Send(c.Request.Context(), &approuting.GetRouteQuery{RouteID: routeID})
		if err != nil {
			respondError(c, err)
			return
		}
		resp := result.(*approuting.GetRouteResponse)
		c.JSON(http.StatusOK, toRouteDTO(resp.Route))
	}
}

// RecalculateRoute handles POST /api/v1/routes/:route_id/recalculate
func (h *Handlers) RecalculateRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		routeID, err := intParam(c, "route_id")
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		var req struct {
			ActorStaffID int `json:"actor_staff_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}

		result, err := h.mediator.Send(c.Request.Context(),
			&approuting.RecalculateRouteCommand{RouteID: routeID, ActorStaffID: req.ActorStaffID})
		if err != nil {
			respondError(c, err)
			return
		}
		resp := result.(*approuting.RecalculateRouteResponse)
		c.JSON(http.StatusOK, gin.H{
			"route":   toRouteSummary(resp.Route),
			"message": resp.Message,
		})
	}
}

// UpdateStop handles PATCH /api/v1/routes/:route_id/stops/:stop_id
func (h *Handlers) UpdateStop() gin.HandlerFunc {
	return func(c *gin.Context) {
		routeID, err := intParam(c, "route_id")
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		stopID, err := intParam(c, "stop_id")
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		var req struct {
			ActorStaffID    int        `json:"actor_staff_id" binding:"required"`
			Status          string     `json:"status" binding:"omitempty,oneof=pending current completed skipped"`
			ActualArrival   *time.Time `json:"actual_arrival"`
			ActualDeparture *time.Time `json:"actual_departure"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}

		result, err := h.mediator.Send(c.Request.Context(), &appexecution.UpdateStopCommand{
			RouteID:         routeID,
			StopID:          stopID,
			ActorStaffID:    req.ActorStaffID,
			Status:          routing.StopStatus(req.Status),
			ActualArrival:   req.ActualArrival,
			ActualDeparture: req.ActualDeparture,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		resp := result.(*appexecution.UpdateStopResponse)
		c.JSON(http.StatusOK, gin.H{
			"route_id":        resp.RouteID,
			"stop_id":         resp.StopID,
			"stop_status":     string(resp.StopStatus),
			"route_status":    string(resp.RouteStatus),
			"route_completed": resp.RouteCompleted,
			"message":         resp.Message,
		})
	}
}

// RecordFailure handles POST /api/v1/failures
func (h *Handlers) RecordFailure() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ListItemID         int    `json:"list_item_id" binding:"required"`
			ActorStaffID       int    `json:"actor_staff_id" binding:"required"`
			FailureType        string `json:"failure_type" binding:"required"`
			AlternativeStoreID *int   `json:"alternative_store_id"`
			Note               string `json:"note"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}

		result, err := h.mediator.Send(c.Request.Context(), &appexecution.RecordFailureCommand{
			ListItemID:         req.ListItemID,
			ActorStaffID:       req.ActorStaffID,
			FailureType:        execution.FailureType(req.FailureType),
			AlternativeStoreID: req.AlternativeStoreID,
			Note:               req.Note,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		resp := result.(*appexecution.RecordFailureResponse)
		c.JSON(http.StatusCreated, gin.H{
			"failure_id":   resp.FailureID,
			"list_item_id": resp.ListItemID,
			"item_id":      resp.ItemID,
			"message":      resp.Message,
		})
	}
}

// RecomputeMatrix handles POST /api/v1/distance-matrix/recompute
func (h *Handlers) RecomputeMatrix() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.mediator.Send(c.Request.Context(), &approuting.RecomputeMatrixCommand{})
		if err != nil {
			respondError(c, err)
			return
		}
		resp := result.(*approuting.RecomputeMatrixResponse)
		c.JSON(http.StatusOK, gin.H{
			"stores":   resp.Stores,
			"geocoded": resp.Geocoded,
			"edges":    resp.Edges,
		})
	}
}

// GetNearestStores handles GET /api/v1/stores/:store_id/nearest?limit=N
func (h *Handlers) GetNearestStores() gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID, err := intParam(c, "store_id")
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil {
				respondBadRequest(c, fmt.Errorf("invalid limit: %q", raw))
				return
			}
		}

		result, err := h.mediator.Send(c.Request.Context(),
			&approuting.NearestStoresQuery{StoreID: storeID, Limit: limit})
		if err != nil {
			respondError(c, err)
			return
		}
		resp := result.(*approuting.NearestStoresResponse)
		stores := make([]gin.H, 0, len(resp.Stores))
		for _, s := range resp.Stores {
			stores = append(stores, gin.H{
				"store_id":            s.StoreID,
				"store_name":          s.StoreName,
				"distance_km":         s.DistanceKm,
				"travel_time_minutes": s.TravelTimeMinutes,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"from_store_id": resp.FromStoreID,
			"stores":        stores,
		})
	}
}

// Health handles GET /health
func (h *Handlers) Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
