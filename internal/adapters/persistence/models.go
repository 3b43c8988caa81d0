package persistence

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductModel represents the products table
type ProductModel struct {
	ProductID          int       `gorm:"column:product_id;primaryKey;autoIncrement"`
	SKU                string    `gorm:"column:sku;unique;not null"`
	ProductName        string    `gorm:"column:product_name;not null"`
	Category           string    `gorm:"column:category"`
	IsStoreFixed       bool      `gorm:"column:is_store_fixed;not null;default:false"`
	FixedStoreID       *int      `gorm:"column:fixed_store_id"`
	ExcludeFromRouting bool      `gorm:"column:exclude_from_routing;not null;default:false"`
	SetSplitRule       string    `gorm:"column:set_split_rule;type:text"` // JSON {"items":[{"sku","qty"}]}
	CreatedAt          time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (ProductModel) TableName() string {
	return "products"
}

// StoreModel represents the stores table.
// Coordinates are persisted as decimal(9,6); nil means not geocoded yet.
type StoreModel struct {
	StoreID       int              `gorm:"column:store_id;primaryKey;autoIncrement"`
	StoreName     string           `gorm:"column:store_name;not null"`
	Address       string           `gorm:"column:address"`
	Latitude      *decimal.Decimal `gorm:"column:latitude;type:decimal(9,6)"`
	Longitude     *decimal.Decimal `gorm:"column:longitude;type:decimal(9,6)"`
	District      string           `gorm:"column:district"`
	Category      string           `gorm:"column:category"`
	PriorityLevel int              `gorm:"column:priority_level;not null;default:3"`
	IsActive      bool             `gorm:"column:is_active;not null;default:true"`
	OpeningHours  string           `gorm:"column:opening_hours;type:text"` // JSON weekday -> "HH:MM-HH:MM"
	CreatedAt     time.Time        `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (StoreModel) TableName() string {
	return "stores"
}

// ProductStoreMappingModel represents the product_store_mappings table
type ProductStoreMappingModel struct {
	MappingID        int           `gorm:"column:mapping_id;primaryKey;autoIncrement"`
	ProductID        int           `gorm:"column:product_id;not null;uniqueIndex:idx_product_store"`
	Product          *ProductModel `gorm:"foreignKey:ProductID;references:ProductID;constraint:OnDelete:CASCADE;"`
	StoreID          int           `gorm:"column:store_id;not null;uniqueIndex:idx_product_store"`
	Store            *StoreModel   `gorm:"foreignKey:StoreID;references:StoreID;constraint:OnDelete:CASCADE;"`
	IsPrimaryStore   bool          `gorm:"column:is_primary_store;not null;default:false"`
	Priority         int           `gorm:"column:priority;not null;default:0"`
	StockStatus      string        `gorm:"column:stock_status;not null;default:'unknown'"`
	MaxDailyQuantity *int          `gorm:"column:max_daily_quantity"`
	CurrentAvailable *int          `gorm:"column:current_available"`
	IsActive         bool          `gorm:"column:is_active;not null;default:true"`
	UpdatedAt        time.Time     `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (ProductStoreMappingModel) TableName() string {
	return "product_store_mappings"
}

// OrderModel represents the orders table
type OrderModel struct {
	OrderID            int              `gorm:"column:order_id;primaryKey;autoIncrement"`
	ExternalOrderID    string           `gorm:"column:external_order_id;unique;not null"`
	SourceChannel      string           `gorm:"column:source_channel"`
	CustomerName       string           `gorm:"column:customer_name"`
	OrderDate          time.Time        `gorm:"column:order_date;not null"`
	TargetPurchaseDate *time.Time       `gorm:"column:target_purchase_date;index"`
	Status             string           `gorm:"column:status;not null;default:'pending'"`
	Items              []OrderItemModel `gorm:"foreignKey:OrderID;references:OrderID;constraint:OnDelete:CASCADE;"`
	CreatedAt          time.Time        `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel represents the order_items table
type OrderItemModel struct {
	ItemID       int              `gorm:"column:item_id;primaryKey;autoIncrement"`
	OrderID      int              `gorm:"column:order_id;not null;index"`
	SKU          string           `gorm:"column:sku;not null;index"`
	ProductName  string           `gorm:"column:product_name"`
	Quantity     int              `gorm:"column:quantity;not null"`
	UnitPrice    *decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2)"`
	IsBundle     bool             `gorm:"column:is_bundle;not null;default:false"`
	ParentItemID *int             `gorm:"column:parent_item_id"`
	Status       string           `gorm:"column:status;not null;default:'pending'"`
	Priority     string           `gorm:"column:priority"`
	CreatedAt    time.Time        `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

// StaffModel represents the staff table
type StaffModel struct {
	StaffID          int              `gorm:"column:staff_id;primaryKey;autoIncrement"`
	Name             string           `gorm:"column:name;not null"`
	Role             string           `gorm:"column:role;not null;default:'buyer'"`
	Status           string           `gorm:"column:status;not null;default:'active'"`
	MaxDailyCapacity int              `gorm:"column:max_daily_capacity;not null;default:20"`
	StartLatitude    *decimal.Decimal `gorm:"column:start_latitude;type:decimal(9,6)"`
	StartLongitude   *decimal.Decimal `gorm:"column:start_longitude;type:decimal(9,6)"`
	IsActive         bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time        `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (StaffModel) TableName() string {
	return "staff"
}

// BusinessRuleModel represents the business_rules key-value table
type BusinessRuleModel struct {
	RuleKey   string    `gorm:"column:rule_key;primaryKey"`
	RuleValue string    `gorm:"column:rule_value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (BusinessRuleModel) TableName() string {
	return "business_rules"
}

// HolidayModel represents the holidays table
type HolidayModel struct {
	HolidayID int       `gorm:"column:holiday_id;primaryKey;autoIncrement"`
	Date      time.Time `gorm:"column:date;unique;not null"`
	Name      string    `gorm:"column:name"`
	IsWorking bool      `gorm:"column:is_working;not null;default:false"`
}

func (HolidayModel) TableName() string {
	return "holidays"
}

// PurchaseListModel represents the purchase_lists table.
// One list per (staff, date); the planner reuses the row across runs.
type PurchaseListModel struct {
	ListID       int                     `gorm:"column:list_id;primaryKey;autoIncrement"`
	StaffID      int                     `gorm:"column:staff_id;not null;uniqueIndex:idx_staff_date"`
	Staff        *StaffModel             `gorm:"foreignKey:StaffID;references:StaffID"`
	PurchaseDate time.Time               `gorm:"column:purchase_date;not null;uniqueIndex:idx_staff_date"`
	Status       string                  `gorm:"column:status;not null;default:'draft'"`
	TotalItems   int                     `gorm:"column:total_items;not null;default:0"`
	TotalStores  int                     `gorm:"column:total_stores;not null;default:0"`
	Items        []PurchaseListItemModel `gorm:"foreignKey:ListID;references:ListID;constraint:OnDelete:CASCADE;"`
	CreatedAt    time.Time               `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (PurchaseListModel) TableName() string {
	return "purchase_lists"
}

// PurchaseListItemModel represents the purchase_list_items table
type PurchaseListItemModel struct {
	ListItemID         int    `gorm:"column:list_item_id;primaryKey;autoIncrement"`
	ListID             int    `gorm:"column:list_id;not null;index"`
	ItemID             int    `gorm:"column:item_id;not null;index"`
	StoreID            int    `gorm:"column:store_id;not null"`
	QuantityToPurchase int    `gorm:"column:quantity_to_purchase;not null"`
	SequenceOrder      int    `gorm:"column:sequence_order;not null"`
	Status             string `gorm:"column:status;not null;default:'pending'"`
}

func (PurchaseListItemModel) TableName() string {
	return "purchase_list_items"
}

// RouteModel represents the routes table
type RouteModel struct {
	RouteID              int              `gorm:"column:route_id;primaryKey;autoIncrement"`
	ListID               int              `gorm:"column:list_id;unique;not null"`
	StaffID              int              `gorm:"column:staff_id;not null;index"`
	RouteDate            time.Time        `gorm:"column:route_date;not null;index"`
	Status               string           `gorm:"column:status;not null;default:'not_started'"`
	TotalDistanceKm      float64          `gorm:"column:total_distance_km;not null;default:0"`
	EstimatedTimeMinutes int              `gorm:"column:estimated_time_minutes;not null;default:0"`
	StartLatitude        *decimal.Decimal `gorm:"column:start_latitude;type:decimal(9,6)"`
	StartLongitude       *decimal.Decimal `gorm:"column:start_longitude;type:decimal(9,6)"`
	IncludeReturn        bool             `gorm:"column:include_return;not null;default:false"`
	Stops                []RouteStopModel `gorm:"foreignKey:RouteID;references:RouteID;constraint:OnDelete:CASCADE;"`
	CreatedAt            time.Time        `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (RouteModel) TableName() string {
	return "routes"
}

// RouteStopModel represents the route_stops table
type RouteStopModel struct {
	StopID           int        `gorm:"column:stop_id;primaryKey;autoIncrement"`
	RouteID          int        `gorm:"column:route_id;not null;index"`
	StoreID          int        `gorm:"column:store_id;not null"`
	StopSequence     int        `gorm:"column:stop_sequence;not null"`
	EstimatedArrival *time.Time `gorm:"column:estimated_arrival"`
	ActualArrival    *time.Time `gorm:"column:actual_arrival"`
	ActualDeparture  *time.Time `gorm:"column:actual_departure"`
	ItemsToPurchase  string     `gorm:"column:items_to_purchase;type:text"` // JSON array of order item ids
	ItemsCount       int        `gorm:"column:items_count;not null;default:0"`
	Status           string     `gorm:"column:status;not null;default:'pending'"`
}

func (RouteStopModel) TableName() string {
	return "route_stops"
}

// StoreDistanceModel represents the store_distance_matrix table.
// Rows are directional; values are symmetric.
type StoreDistanceModel struct {
	FromStoreID       int       `gorm:"column:from_store_id;primaryKey"`
	ToStoreID         int       `gorm:"column:to_store_id;primaryKey"`
	DistanceKm        float64   `gorm:"column:distance_km;not null"`
	TravelTimeMinutes int       `gorm:"column:travel_time_minutes;not null"`
	LastCalculated    time.Time `gorm:"column:last_calculated;not null"`
}

func (StoreDistanceModel) TableName() string {
	return "store_distance_matrix"
}

// PurchaseFailureModel represents the purchase_failures table
type PurchaseFailureModel struct {
	FailureID          int       `gorm:"column:failure_id;primaryKey;autoIncrement"`
	ListItemID         int       `gorm:"column:list_item_id;not null;index"`
	StaffID            int       `gorm:"column:staff_id;not null"`
	FailureType        string    `gorm:"column:failure_type;not null"`
	AlternativeStoreID *int      `gorm:"column:alternative_store_id"`
	Note               string    `gorm:"column:note;type:text"`
	RecordedAt         time.Time `gorm:"column:recorded_at;not null"`
}

func (PurchaseFailureModel) TableName() string {
	return "purchase_failures"
}
