package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `gorm:"not null;default:''"      json:"description"`
	Category    string    `gorm:"index"                    json:"category"`
	Price       float64   `gorm:"not null;check:price>=0"  json:"price"`
	Rating      float64   `gorm:"not null;default:0"       json:"rating"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CartItem is one line of a user's cart; the cart itself is the set of lines
// sharing a UserID.
type CartItem struct {
	ID        uint `gorm:"primaryKey"                                 json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"userId"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"productId"`
	Quantity  uint `gorm:"not null;default:1;check:quantity>0"        json:"quantity"`
}

type Coupon struct {
	ID                 uint      `gorm:"primaryKey"            json:"id"`
	Code               string    `gorm:"uniqueIndex;size:6;not null" json:"code"`
	DiscountPercentage float64   `gorm:"not null"              json:"discountPercentage"`
	IsActive           bool      `gorm:"not null;default:true" json:"isActive"`
	IsUsed             bool      `gorm:"not null;default:false" json:"isUsed"`
	UsedBy             *uint     `json:"usedBy,omitempty"`
	ExpiresAt          time.Time `gorm:"not null"              json:"expiresAt"`
	CreatedAt          time.Time `json:"createdAt"`
}

type OrderReview struct {
	ID        uint      `gorm:"primaryKey"                                  json:"id"`
	OrderID   uint      `gorm:"not null;uniqueIndex:idx_review_order_user"  json:"orderId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_order_user"  json:"userId"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5"       json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductReview feeds Product.Rating. OrderID is set when the review was
// mirrored from an order review.
type ProductReview struct {
	ID        uint      `gorm:"primaryKey"                            json:"id"`
	ProductID uint      `gorm:"index;not null"                        json:"productId"`
	UserID    uint      `gorm:"index;not null"                        json:"userId"`
	OrderID   *uint     `gorm:"index"                                 json:"orderId,omitempty"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Notification with a nil UserID is a broadcast.
type Notification struct {
	ID        uint      `gorm:"primaryKey"             json:"id"`
	UserID    *uint     `gorm:"index"                  json:"userId"`
	Message   string    `gorm:"not null"               json:"message"`
	Type      string    `gorm:"not null;default:info"  json:"type"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"index"                  json:"createdAt"`
}

type VaccineStock struct {
	ID         uint      `gorm:"primaryKey"                                json:"id"`
	HospitalID uint      `gorm:"not null;uniqueIndex:idx_stock_hospital_vaccine" json:"hospitalId"`
	VaccineID  uint      `gorm:"not null;uniqueIndex:idx_stock_hospital_vaccine" json:"vaccineId"`
	Quantity   int       `gorm:"not null;default:0;check:quantity>=0"      json:"quantity"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func All() []any {
	return []any{
		&User{}, &Product{}, &CartItem{}, &Order{}, &OrderItem{}, &Coupon{},
		&OrderReview{}, &ProductReview{}, &Notification{}, &VaccineStock{},
	}
}
