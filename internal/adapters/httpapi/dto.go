package httpapi

import (
	"time"

	appplanning "github.com/kaitori/dispatch-go/internal/application/planning"
	approuting "github.com/kaitori/dispatch-go/internal/application/routing"
	"github.com/kaitori/dispatch-go/internal/domain/planning"
	"github.com/kaitori/dispatch-go/internal/domain/routing"
)

const dateLayout = "2006-01-02"

type buyerSummaryDTO struct {
	StaffID     int    `json:"staff_id"`
	Name        string `json:"name"`
	ListID      int    `json:"list_id"`
	AddedTasks  int    `json:"added_tasks"`
	TotalTasks  int    `json:"total_tasks"`
	TotalStores int    `json:"total_stores"`
}

type shortfallDTO struct {
	ItemID    int `json:"item_id"`
	Remaining int `json:"remaining"`
}

type assignDayDTO struct {
	PlanRunID    string            `json:"plan_run_id"`
	Date         string            `json:"date"`
	PlacedItems  int               `json:"placed_items"`
	SkippedItems []int             `json:"skipped_items"`
	Shortfalls   []shortfallDTO    `json:"shortfalls"`
	Buyers       []buyerSummaryDTO `json:"buyers"`
	Message      string            `json:"message"`
}

type assignToStaffDTO struct {
	StaffID      int    `json:"staff_id"`
	Date         string `json:"date"`
	ListID       int    `json:"list_id"`
	PlacedItems  int    `json:"placed_items"`
	SkippedItems []int  `json:"skipped_items"`
	Message      string `json:"message"`
}

type routeSummaryDTO struct {
	RouteID              int     `json:"route_id"`
	ListID               int     `json:"list_id"`
	StaffID              int     `json:"staff_id"`
	Stops                int     `json:"stops"`
	TotalDistanceKm      float64 `json:"total_distance_km"`
	EstimatedTimeMinutes int     `json:"estimated_time_minutes"`
}

type generateRoutesDTO struct {
	Date    string            `json:"date"`
	Routes  []routeSummaryDTO `json:"routes"`
	Message string            `json:"message"`
}

type planDayDTO struct {
	PlanRunID    string            `json:"plan_run_id"`
	Date         string            `json:"date"`
	PlacedItems  int               `json:"placed_items"`
	SkippedItems []int             `json:"skipped_items"`
	Shortfalls   []shortfallDTO    `json:"shortfalls"`
	Buyers       []buyerSummaryDTO `json:"buyers"`
	Routes       []routeSummaryDTO `json:"routes"`
	Dispatched   bool              `json:"dispatched"`
	Message      string            `json:"message"`
}

type routeStopDTO struct {
	StopID           int        `json:"stop_id"`
	StoreID          int        `json:"store_id"`
	StopSequence     int        `json:"stop_sequence"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
	ActualArrival    *time.Time `json:"actual_arrival,omitempty"`
	ActualDeparture  *time.Time `json:"actual_departure,omitempty"`
	ItemsToPurchase  []int      `json:"items_to_purchase"`
	ItemsCount       int        `json:"items_count"`
	Status           string     `json:"status"`
}

type routeDTO struct {
	RouteID              int            `json:"route_id"`
	ListID               int            `json:"list_id"`
	StaffID              int            `json:"staff_id"`
	RouteDate            string         `json:"route_date"`
	Status               string         `json:"status"`
	TotalDistanceKm      float64        `json:"total_distance_km"`
	EstimatedTimeMinutes int            `json:"estimated_time_minutes"`
	IncludeReturn        bool           `json:"include_return"`
	Stops                []routeStopDTO `json:"stops"`
}

type purchaseTaskDTO struct {
	ListItemID         int    `json:"list_item_id"`
	ItemID             int    `json:"item_id"`
	StoreID            int    `json:"store_id"`
	QuantityToPurchase int    `json:"quantity_to_purchase"`
	SequenceOrder      int    `json:"sequence_order"`
	Status             string `json:"status"`
}

type purchaseListDTO struct {
	ListID       int               `json:"list_id"`
	StaffID      int               `json:"staff_id"`
	PurchaseDate string            `json:"purchase_date"`
	Status       string            `json:"status"`
	TotalItems   int               `json:"total_items"`
	TotalStores  int               `json:"total_stores"`
	Items        []purchaseTaskDTO `json:"items"`
}

func toShortfalls(shortfalls []appplanning.ItemShortfall) []shortfallDTO {
	out := make([]shortfallDTO, 0, len(shortfalls))
	for _, s := range shortfalls {
		out = append(out, shortfallDTO{ItemID: s.ItemID, Remaining: s.Remaining})
	}
	return out
}

func toBuyerSummaries(buyers []appplanning.BuyerSummary) []buyerSummaryDTO {
	out := make([]buyerSummaryDTO, 0, len(buyers))
	for _, b := range buyers {
		out = append(out, buyerSummaryDTO{
			StaffID:     b.StaffID,
			Name:        b.Name,
			ListID:      b.ListID,
			AddedTasks:  b.AddedTasks,
			TotalTasks:  b.TotalTasks,
			TotalStores: b.TotalStores,
		})
	}
	return out
}

func toRouteSummaries(routes []approuting.RouteSummary) []routeSummaryDTO {
	out := make([]routeSummaryDTO, 0, len(routes))
	for _, r := range routes {
		out = append(out, toRouteSummary(r))
	}
	return out
}

func toRouteSummary(r approuting.RouteSummary) routeSummaryDTO {
	return routeSummaryDTO{
		RouteID:              r.RouteID,
		ListID:               r.ListID,
		StaffID:              r.StaffID,
		Stops:                r.Stops,
		TotalDistanceKm:      r.TotalDistanceKm,
		EstimatedTimeMinutes: r.EstimatedTimeMinutes,
	}
}

func toRouteDTO(route *routing.Route) routeDTO {
	stops := make([]routeStopDTO, 0, len(route.Stops))
	for _, s := range route.Stops {
		stops = append(stops, routeStopDTO{
			StopID:           s.StopID,
			StoreID:          s.StoreID,
			StopSequence:     s.StopSequence,
			EstimatedArrival: s.EstimatedArrival,
			ActualArrival:    s.ActualArrival,
			ActualDeparture:  s.ActualDeparture,
			ItemsToPurchase:  s.ItemsToPurchase,
			ItemsCount:       s.ItemsCount,
			Status:           string(s.Status),
		})
	}
	return routeDTO{
		RouteID:              route.RouteID,
		ListID:               route.ListID,
		StaffID:              route.StaffID,
		RouteDate:            route.RouteDate.Format(dateLayout),
		Status:               string(route.Status),
		TotalDistanceKm:      route.TotalDistanceKm,
		EstimatedTimeMinutes: route.EstimatedTimeMinutes,
		IncludeReturn:        route.IncludeReturn,
		Stops:                stops,
	}
}

func toPurchaseListDTO(list *planning.PurchaseList) purchaseListDTO {
	items := make([]purchaseTaskDTO, 0, len(list.Items))
	for _, task := range list.Items {
		items = append(items, purchaseTaskDTO{
			ListItemID:         task.ListItemID,
			ItemID:             task.ItemID,
			StoreID:            task.StoreID,
			QuantityToPurchase: task.QuantityToPurchase,
			SequenceOrder:      task.SequenceOrder,
			Status:             string(task.Status),
		})
	}
	return purchaseListDTO{
		ListID:       list.ListID,
		StaffID:      list.StaffID,
		PurchaseDate: list.PurchaseDate.Format(dateLayout),
		Status:       string(list.Status),
		TotalItems:   list.TotalItems,
		TotalStores:  list.TotalStores,
		Items:        items,
	}
}
