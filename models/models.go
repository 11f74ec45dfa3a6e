package models

import "time"

// Menu item categories are free-form strings chosen by the admin; the food
// type is restricted to the two values below.
const (
	TypeVeg    = "veg"
	TypeNonVeg = "non-veg"
)

// Order statuses. Transitions only move forward; see orders.CanTransition.
const (
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
)

type MenuItem struct {
	MenuID      string    `json:"menuid" bson:"menuid"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Category    string    `json:"category" bson:"category"`
	Type        string    `json:"type" bson:"type"` // veg or non-veg
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	ThumbURL    string    `json:"thumb_url,omitempty" bson:"thumb_url,omitempty"`
	IsAvailable bool      `json:"is_available" bson:"is_available"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// OrderItem is a point-in-time snapshot of a purchased menu item. Name and
// price are copied from the menu at order time and never reconciled with
// later menu edits.
type OrderItem struct {
	MenuItemID string  `json:"menu_item_id" bson:"menu_item_id"`
	Name       string  `json:"name" bson:"name"`
	Quantity   int     `json:"quantity" bson:"quantity"`
	Price      float64 `json:"price" bson:"price"`
}

// Order embeds its item snapshots directly; the embedded array is the single
// authoritative representation.
type Order struct {
	OrderID         string      `json:"orderid" bson:"orderid"`
	OrderNumber     int         `json:"order_number" bson:"order_number"`
	CustomerName    string      `json:"customer_name" bson:"customer_name"`
	CustomerMobile  string      `json:"customer_mobile" bson:"customer_mobile"`
	CustomerAddress string      `json:"customer_address" bson:"customer_address"`
	Status          string      `json:"status" bson:"status"`
	TotalAmount     float64     `json:"total_amount" bson:"total_amount"`
	Items           []OrderItem `json:"items" bson:"items"`
	CreatedAt       time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" bson:"updated_at"`
}

type AdminUser struct {
	AdminID      string    `json:"adminid" bson:"adminid"`
	Mobile       string    `json:"mobile" bson:"mobile"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Session holds a hashed refresh token. Documents expire through a TTL index
// on Expire.
type Session struct {
	SID       string    `json:"sid" bson:"sid"`
	AdminID   string    `json:"adminid" bson:"adminid"`
	TokenHash string    `json:"-" bson:"token_hash"`
	Expire    time.Time `json:"expire" bson:"expire"`
}

type OrderStats struct {
	ActiveOrders    int     `json:"activeOrders"`
	TodayRevenue    float64 `json:"todayRevenue"`
	CompletedOrders int     `json:"completedOrders"`
	TotalMenuItems  int     `json:"totalMenuItems"`
}
