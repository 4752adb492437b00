package transport

import (
	"time"

	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/util"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type AuthResponse struct {
	Message   string       `json:"message"`
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type AddToCartRequest struct {
	ProductID uint `json:"productId"`
	Quantity  *int `json:"quantity"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type PayRequest struct {
	CouponCode string `json:"couponCode"`
}

type ReorderRequest struct {
	MergeBehavior string `json:"mergeBehavior"`
}

type GenerateCouponRequest struct {
	ExpiresAt *time.Time `json:"expiresAt"`
}

type BroadcastRequest struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type VaccineStockRequest struct {
	HospitalID uint `json:"hospitalId"`
	VaccineID  uint `json:"vaccineId"`
	Quantity   int  `json:"quantity"`
}

type VaccineAdjustRequest struct {
	HospitalID uint `json:"hospitalId"`
	VaccineID  uint `json:"vaccineId"`
	Delta      int  `json:"delta"`
}

type PageResponse struct {
	Data any           `json:"data"`
	Meta util.PageMeta `json:"meta"`
}
