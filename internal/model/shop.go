package model

import "time"

type ShopStatus string

const (
	ShopStatusActive   ShopStatus = "active"
	ShopStatusInactive ShopStatus = "inactive"
)

type SocialLinks struct {
	Instagram string `gorm:"size:255" json:"instagram"`
	Whatsapp  string `gorm:"size:32" json:"whatsapp"`
	Website   string `gorm:"size:255" json:"website"`
}

// Shop is a seller's storefront. IsActive is the owner's toggle; Status is
// derived from billing and only written by subscription sync.
type Shop struct {
	ID              string      `gorm:"primaryKey;size:36;not null" json:"id"`
	ClientID        string      `gorm:"size:36;uniqueIndex;not null" json:"clientId"`
	ShopName        string      `gorm:"size:128" json:"shopName"`
	Slug            string      `gorm:"size:160;index" json:"slug"`
	ShopDescription string      `gorm:"size:1024" json:"shopDescription"`
	ShopCategory    string      `gorm:"size:64;not null" json:"shopCategory"`
	ProfileImage    string      `gorm:"size:512" json:"profileImage"`
	CoverImage      string      `gorm:"size:512" json:"coverImage"`
	Address         string      `gorm:"size:255" json:"address"`
	City            string      `gorm:"size:64" json:"city"`
	Pincode         string      `gorm:"size:16" json:"pincode"`
	SocialLinks     SocialLinks `gorm:"embedded;embeddedPrefix:social_" json:"socialLinks"`

	IsActive      bool       `gorm:"not null" json:"isActive"`
	Status        ShopStatus `gorm:"size:16;not null;index" json:"status"`
	TotalOrder    int64      `gorm:"not null" json:"totalOrder"`
	AverageRating float64    `gorm:"not null" json:"averageRating"`
	TotalReviews  int64      `gorm:"not null" json:"totalReviews"`
	ProductCount  int64      `gorm:"not null" json:"productCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	DefaultShopCategory = "General"
	DefaultProfileImage = "https://placehold.co/400"
)
