package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductCategory string

const (
	CategoryCake       ProductCategory = "Cake"
	CategoryPastry     ProductCategory = "Pastry"
	CategoryCookies    ProductCategory = "Cookies"
	CategoryBread      ProductCategory = "Bread"
	CategoryBrownie    ProductCategory = "Brownie"
	CategoryDonuts     ProductCategory = "Donuts"
	CategoryChocolates ProductCategory = "Chocolates"
	CategorySnacks     ProductCategory = "Snacks"
	CategoryOthers     ProductCategory = "Others"
)

var productCategories = map[ProductCategory]struct{}{
	CategoryCake: {}, CategoryPastry: {}, CategoryCookies: {}, CategoryBread: {}, CategoryBrownie: {},
	CategoryDonuts: {}, CategoryChocolates: {}, CategorySnacks: {}, CategoryOthers: {},
}

func (c ProductCategory) Valid() bool {
	_, ok := productCategories[c]
	return ok
}

type UnitType string

const (
	UnitKg       UnitType = "kg"
	UnitQuantity UnitType = "quantity"
)

func (u UnitType) Valid() bool {
	return u == UnitKg || u == UnitQuantity
}

type Product struct {
	ID                 string          `gorm:"primaryKey;size:36;not null" json:"id"`
	ShopID             string          `gorm:"size:36;index;not null" json:"shopId"`
	ClientID           string          `gorm:"size:36;index;not null" json:"clientId"`
	ProductName        string          `gorm:"size:128;not null" json:"productName"`
	ProductDescription string          `gorm:"size:1024" json:"productDescription"`
	Price              decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Images             []string        `gorm:"serializer:json" json:"images"`
	Stock              int             `gorm:"not null" json:"stock"`
	UnitType           UnitType        `gorm:"size:16;not null" json:"unitType"`
	UnitValue          float64         `gorm:"not null" json:"unitValue"`
	Category           ProductCategory `gorm:"size:32;index;not null" json:"category"`
	IsActive           bool            `gorm:"not null" json:"isActive"`

	AverageRating float64 `gorm:"not null" json:"averageRating"`
	ReviewCount   int64   `gorm:"not null" json:"reviewCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
