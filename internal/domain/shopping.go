package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one (user, product) line. At most one row exists per
// (user, product) pair, enforced by merge-on-add in the cart store.
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index" json:"user_id,string"`
	ProductID int64     `gorm:"index" json:"product_id"`
	Quantity  int       `gorm:"default:1" json:"quantity" form:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName Specify table name
func (CartItem) TableName() string {
	return "cart_items"
}

const (
	OrderStatusPending   = "pending"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderStatusValid reports whether s is a known order status.
func OrderStatusValid(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is an immutable purchase snapshot, status is the only mutable field.
type Order struct {
	ID        int64           `json:"id,string"`
	OrderRef  string          `gorm:"uniqueIndex;size:64" json:"order_ref"`
	UserID    int64           `gorm:"index" json:"user_id,string"`
	Address   string          `gorm:"size:512" json:"address"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2)" json:"total"`
	Status    string          `gorm:"size:16;index" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

// OrderItem captures quantity and the unit price at purchase time,
// decoupled from later product price changes.
type OrderItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"index" json:"order_id,string"`
	ProductID int64           `gorm:"index" json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "order_items"
}
