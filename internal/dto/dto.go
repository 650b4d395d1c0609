package dto

import "github.com/shopspring/decimal"

type RegisterRequest struct {
	Name      string   `json:"name" validate:"required,min=2,max=128"`
	Email     string   `json:"email" validate:"omitempty,email,max=255"`
	Phone     string   `json:"phone" validate:"omitempty,min=7,max=20"`
	Password  string   `json:"password" validate:"required,min=8,max=72"`
	Terms     bool     `json:"terms"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
}

// LoginRequest accepts either an email address or a phone number as contact.
type LoginRequest struct {
	Contact  string `json:"contact" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,max=72"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

type UpdateProfileRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=2,max=128"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
}

type UpdateAddressRequest struct {
	FlatNo       string `json:"flatNo" validate:"required,max=64"`
	BuildingName string `json:"buildingName" validate:"required,min=2,max=128"`
	Area         string `json:"area" validate:"required,min=3,max=128"`
	City         string `json:"city" validate:"required,min=2,max=64"`
	Pincode      string `json:"pincode" validate:"required,len=6,numeric"`
	State        string `json:"state" validate:"required,min=2,max=64"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=100"`
}

type CustomizationRequest struct {
	Weight string `json:"weight" validate:"max=32"`
	Flavor string `json:"flavor" validate:"max=64"`
	Theme  string `json:"theme" validate:"max=64"`
	Notes  string `json:"notes" validate:"max=1024"`
}

// CreateOrderRequest carries either items or a customization, never both.
type CreateOrderRequest struct {
	ShopID        string                `json:"shopId" validate:"required"`
	Items         []*OrderItemRequest   `json:"items" validate:"omitempty,max=50,dive"`
	Customization *CustomizationRequest `json:"customization"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type UpdatePriceRequest struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type AddReviewRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=1024"`
}

type SocialLinksRequest struct {
	Instagram *string `json:"instagram" validate:"omitempty,max=255"`
	Whatsapp  *string `json:"whatsapp" validate:"omitempty,max=32"`
	Website   *string `json:"website" validate:"omitempty,max=255"`
}

type UpdateShopRequest struct {
	ShopName        *string             `json:"shopName" validate:"omitempty,min=2,max=128"`
	ShopDescription *string             `json:"shopDescription" validate:"omitempty,max=1024"`
	ShopCategory    *string             `json:"shopCategory" validate:"omitempty,max=64"`
	Address         *string             `json:"address" validate:"omitempty,max=255"`
	City            *string             `json:"city" validate:"omitempty,max=64"`
	Pincode         *string             `json:"pincode" validate:"omitempty,max=16"`
	SocialLinks     *SocialLinksRequest `json:"socialLinks"`
}

type CreateProductRequest struct {
	ProductName        string          `json:"productName" validate:"required,min=2,max=128"`
	ProductDescription string          `json:"productDescription" validate:"max=1024"`
	Price              decimal.Decimal `json:"price"`
	Stock              int             `json:"stock" validate:"min=0"`
	UnitType           string          `json:"unitType" validate:"required,oneof=kg quantity"`
	UnitValue          float64         `json:"unitValue" validate:"gte=1"`
	Category           string          `json:"category" validate:"required"`
}

type UpdateProductRequest struct {
	ProductName        *string          `json:"productName" validate:"omitempty,min=2,max=128"`
	ProductDescription *string          `json:"productDescription" validate:"omitempty,max=1024"`
	Price              *decimal.Decimal `json:"price"`
	Stock              *int             `json:"stock" validate:"omitempty,min=0"`
	UnitType           *string          `json:"unitType" validate:"omitempty,oneof=kg quantity"`
	UnitValue          *float64         `json:"unitValue" validate:"omitempty,gte=1"`
	Category           *string          `json:"category"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}
