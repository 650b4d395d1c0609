package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderOnTheWay  OrderStatus = "on-the-way"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// orderTransitions is the full status machine. Anything not listed is illegal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderPreparing, OrderCancelled},
	OrderPreparing: {OrderOnTheWay, OrderCancelled},
	OrderOnTheWay:  {OrderDelivered},
	OrderDelivered: {},
	OrderCancelled: {},
}

// OrderStatuses lists every status in fulfilment order.
var OrderStatuses = []OrderStatus{OrderPending, OrderPreparing, OrderOnTheWay, OrderDelivered, OrderCancelled}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// Stage is the position of s along the fulfilment path. Cancelled orders
// are off the path and report -1.
func (s OrderStatus) Stage() int {
	switch s {
	case OrderPending:
		return 0
	case OrderPreparing:
		return 1
	case OrderOnTheWay:
		return 2
	case OrderDelivered:
		return 3
	default:
		return -1
	}
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type OrderKind string

const (
	OrderKindStandard OrderKind = "standard"
	OrderKindCustom   OrderKind = "custom"
)

// Customization is a free-form cake request priced later by the seller.
type Customization struct {
	Weight string `gorm:"size:32" json:"weight,omitempty"`
	Flavor string `gorm:"size:64" json:"flavor,omitempty"`
	Theme  string `gorm:"size:64" json:"theme,omitempty"`
	Notes  string `gorm:"size:1024" json:"notes,omitempty"`
}

func (c Customization) IsZero() bool {
	return c == Customization{}
}

type Order struct {
	ID            string          `gorm:"primaryKey;size:36;not null" json:"id"`
	UserID        string          `gorm:"size:36;index;not null" json:"userId"` // buyer
	ShopID        string          `gorm:"size:36;index;not null" json:"shopId"`
	Kind          OrderKind       `gorm:"size:16;not null" json:"kind"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Customization Customization   `gorm:"embedded;embeddedPrefix:customization_" json:"customization"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	PaymentStatus PaymentStatus   `gorm:"size:16;not null" json:"paymentStatus"`
	OrderStatus   OrderStatus     `gorm:"size:16;index;not null" json:"orderStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// OrderItem freezes the product's name and price at order time; later
// product edits never reach it.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     string          `gorm:"size:36;index;not null" json:"orderId"`
	ProductID   string          `gorm:"size:36;index;not null" json:"productId"`
	ProductName string          `gorm:"size:128;not null" json:"productName"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (o *Order) HasProduct(productID string) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// PendingOrderClaim exists while a buyer holds a pending order on a product.
// Its primary key is the store-level guard against duplicate pending orders.
type PendingOrderClaim struct {
	UserID    string `gorm:"primaryKey;size:36;not null"`
	ProductID string `gorm:"primaryKey;size:36;not null"`
	OrderID   string `gorm:"size:36;index;not null"`
	CreatedAt time.Time
}
