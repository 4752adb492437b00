package models

import "time"

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID             uint        `gorm:"primaryKey"                   json:"id"`
	UserID         uint        `gorm:"index;not null"               json:"userId"`
	Items          []OrderItem `gorm:"foreignKey:OrderID"           json:"items"`
	TotalAmount    float64     `gorm:"not null"                     json:"totalAmount"`
	DiscountAmount float64     `gorm:"not null;default:0"           json:"discountAmount"`
	CouponCode     string      `json:"couponCode,omitempty"`
	Status         OrderStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	OrderDate      time.Time   `gorm:"index;not null"               json:"orderDate"`
	IsReviewed     bool        `gorm:"not null;default:false"       json:"isReviewed"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// OrderItem carries the product name and price as they were at checkout.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"                  json:"-"`
	OrderID   uint    `gorm:"index;not null"              json:"-"`
	ProductID uint    `gorm:"not null"                    json:"productId"`
	Name      string  `gorm:"not null"                    json:"name"`
	Price     float64 `gorm:"not null"                    json:"price"`
	Quantity  uint    `gorm:"not null;check:quantity>0"   json:"quantity"`
}
