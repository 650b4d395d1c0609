package model

import "time"

type SubscriptionStatus string

const (
	SubscriptionCreated       SubscriptionStatus = "created"
	SubscriptionAuthenticated SubscriptionStatus = "authenticated"
	SubscriptionPaused        SubscriptionStatus = "paused"
	SubscriptionActive        SubscriptionStatus = "active"
	SubscriptionPending       SubscriptionStatus = "pending"
	SubscriptionHalted        SubscriptionStatus = "halted"
	SubscriptionCompleted     SubscriptionStatus = "completed"
	SubscriptionCancelled     SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionCreated, SubscriptionAuthenticated, SubscriptionPaused, SubscriptionActive,
		SubscriptionPending, SubscriptionHalted, SubscriptionCompleted, SubscriptionCancelled:
		return true
	}
	return false
}

type Subscription struct {
	ID           string             `gorm:"primaryKey;size:36;not null" json:"id"`
	ClientID     string             `gorm:"size:36;index;not null" json:"clientId"`
	ShopID       string             `gorm:"size:36;index;not null" json:"shopId"`
	Provider     string             `gorm:"size:16;not null" json:"provider"`
	ExternalID   string             `gorm:"size:64;uniqueIndex;not null" json:"externalId"` // billing provider subscription id
	PlanID       string             `gorm:"size:64" json:"planId"`
	Status       SubscriptionStatus `gorm:"size:16;index;not null" json:"status"`
	ApprovalURL  string             `gorm:"size:512" json:"approvalUrl,omitempty"`
	CurrentStart *time.Time         `json:"currentStart,omitempty"`
	CurrentEnd   *time.Time         `json:"currentEnd,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
