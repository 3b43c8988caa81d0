package common

import (
	"context"
	"time"

	"github.com/kaitori/dispatch-go/internal/domain/catalog"
	"github.com/kaitori/dispatch-go/internal/domain/execution"
	"github.com/kaitori/dispatch-go/internal/domain/ordering"
	"github.com/kaitori/dispatch-go/internal/domain/planning"
	"github.com/kaitori/dispatch-go/internal/domain/policy"
	"github.com/kaitori/dispatch-go/internal/domain/routing"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
	"github.com/kaitori/dispatch-go/internal/domain/staff"
)

// StoreRepository defines store persistence operations
type StoreRepository interface {
	FindByID(ctx context.Context, storeID int) (*catalog.Store, error)
	ListActive(ctx context.Context) ([]*catalog.Store, error)
	// ListByIDs returns the stores for a set of ids, active or not
	ListByIDs(ctx context.Context, storeIDs []int) ([]*catalog.Store, error)
	Save(ctx context.Context, store *catalog.Store) error
}

// ProductRepository defines product master and mapping operations.
// The list methods are the allocator's two bulk reads; callers must not
// fall back to per-item lookups.
type ProductRepository interface {
	ListBySKUs(ctx context.Context, skus []string) ([]*catalog.Product, error)
	ListActiveMappings(ctx context.Context, productIDs []int) ([]*catalog.ProductStoreMapping, error)
	Save(ctx context.Context, product *catalog.Product) error
}

// OrderRepository defines order and order-item persistence operations
type OrderRepository interface {
	FindByID(ctx context.Context, orderID int) (*ordering.Order, error)
	// ListPendingItems returns pending non-bundle items of orders targeted
	// at the date
	ListPendingItems(ctx context.Context, date time.Time) ([]*ordering.OrderItem, error)
	// ListPendingBundles returns pending bundle items of orders targeted at
	// the date, for defensive expansion at plan start
	ListPendingBundles(ctx context.Context, date time.Time) ([]*ordering.OrderItem, error)
	ListItemsByIDs(ctx context.Context, itemIDs []int) ([]*ordering.OrderItem, error)
	// ListOrdersOfItems loads the distinct orders (with items) that own the
	// given items
	ListOrdersOfItems(ctx context.Context, itemIDs []int) ([]*ordering.Order, error)
	Save(ctx context.Context, order *ordering.Order) error
	SaveItem(ctx context.Context, item *ordering.OrderItem) error
	UpdateItemStatus(ctx context.Context, itemID int, status ordering.ItemStatus) error
	UpdateStatus(ctx context.Context, orderID int, status ordering.OrderStatus) error
}

// PurchaseListRepository defines purchase-list persistence operations
type PurchaseListRepository interface {
	// FindByStaffAndDate returns nil when the buyer has no list for the date
	FindByStaffAndDate(ctx context.Context, staffID int, date time.Time) (*planning.PurchaseList, error)
	FindByID(ctx context.Context, listID int) (*planning.PurchaseList, error)
	ListByDate(ctx context.Context, date time.Time) ([]*planning.PurchaseList, error)
	// CountItems returns existing buy-task counts per staff for the date
	CountItems(ctx context.Context, staffIDs []int, date time.Time) (map[int]int, error)
	Create(ctx context.Context, list *planning.PurchaseList) error
	AppendItems(ctx context.Context, listID int, items []*planning.PurchaseListItem) error
	UpdateTotals(ctx context.Context, list *planning.PurchaseList) error
	UpdateStatus(ctx context.Context, listID int, status planning.ListStatus) error
	FindItemByID(ctx context.Context, listItemID int) (*planning.PurchaseListItem, error)
	UpdateItemStatus(ctx context.Context, listItemID int, status planning.PurchaseStatus) error
	// ListItemsByOrderItems returns buy tasks referencing any of the order
	// items
	ListItemsByOrderItems(ctx context.Context, itemIDs []int) ([]*planning.PurchaseListItem, error)
}

// RouteRepository defines route and stop persistence operations
type RouteRepository interface {
	FindByID(ctx context.Context, routeID int) (*routing.Route, error)
	// FindByListID returns nil when no route exists for the list
	FindByListID(ctx context.Context, listID int) (*routing.Route, error)
	ListByDate(ctx context.Context, date time.Time) ([]*routing.Route, error)
	Create(ctx context.Context, route *routing.Route) error
	// ReplaceStops deletes the route's stops and inserts the new sequence
	ReplaceStops(ctx context.Context, routeID int, stops []*routing.RouteStop) error
	UpdateTotals(ctx context.Context, route *routing.Route) error
	UpdateStatus(ctx context.Context, routeID int, status routing.RouteStatus) error
	UpdateStop(ctx context.Context, stop *routing.RouteStop) error
}

// StaffRepository defines staff persistence operations
type StaffRepository interface {
	FindByID(ctx context.Context, staffID int) (*staff.Staff, error)
	// ListAssignableBuyers returns active buyers not off duty
	ListAssignableBuyers(ctx context.Context) ([]*staff.Staff, error)
	Save(ctx context.Context, member *staff.Staff) error
	UpdateStatus(ctx context.Context, staffID int, status staff.Status) error
}

// PolicyRepository loads the business-rule snapshot a planning
// transaction works from
type PolicyRepository interface {
	LoadSnapshot(ctx context.Context) (*policy.Snapshot, error)
	UpsertRule(ctx context.Context, key, value string) error
	ListHolidays(ctx context.Context) ([]policy.Holiday, error)
	SaveHoliday(ctx context.Context, holiday policy.Holiday) error
}

// DistanceMatrixRepository defines cached distance operations
type DistanceMatrixRepository interface {
	// ListAmong returns cached edges whose endpoints are both in the set
	ListAmong(ctx context.Context, storeIDs []int) ([]routing.Edge, error)
	UpsertEdges(ctx context.Context, edges []routing.Edge) error
	// NearestFrom returns the closest cached stores from one store
	NearestFrom(ctx context.Context, storeID, limit int) ([]routing.Edge, error)
}

// FailureRepository records purchase failures
type FailureRepository interface {
	Record(ctx context.Context, failure *execution.PurchaseFailure) error
	ListByStaffAndDate(ctx context.Context, staffID int, date time.Time) ([]*execution.PurchaseFailure, error)
}

// Geocoder decodes a street address to coordinates via an external
// mapping service
type Geocoder interface {
	Geocode(ctx context.Context, address string) (shared.Coordinate, error)
}

// Repositories bundles every port a transactional handler can touch
type Repositories struct {
	Stores   StoreRepository
	Products ProductRepository
	Orders   OrderRepository
	Lists    PurchaseListRepository
	Routes   RouteRepository
	Staff    StaffRepository
	Policies PolicyRepository
	Matrix   DistanceMatrixRepository
	Failures FailureRepository
}

// UnitOfWork runs a function inside one database transaction. The
// repositories passed to fn are bound to that transaction; any returned
// error rolls everything back. ExecuteForDate additionally serializes
// concurrent transactions planning the same date.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error
	ExecuteForDate(ctx context.Context, date time.Time, fn func(ctx context.Context, repos *Repositories) error) error
}
