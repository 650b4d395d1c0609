package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        string    `gorm:"primaryKey;size:36;not null" json:"id"`
	UserID    string    `gorm:"size:36;index;not null" json:"userId"`
	OrderID   string    `gorm:"size:36;uniqueIndex;not null" json:"orderId"`
	ProductID string    `gorm:"size:36;index;not null" json:"productId"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"size:1024" json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RatingStats is the result of aggregating reviews.
type RatingStats struct {
	Average float64
	Count   int64
}
