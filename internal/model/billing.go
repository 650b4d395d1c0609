package model

import (
	"strings"
	"time"
)

// BillingWebhookEvent is the signed body posted by the billing provider.
type BillingWebhookEvent struct {
	Event     string         `json:"event"`
	CreatedAt int64          `json:"created_at"`
	Payload   BillingPayload `json:"payload"`
}

type BillingPayload struct {
	Subscription BillingSubscriptionWrapper `json:"subscription"`
}

type BillingSubscriptionWrapper struct {
	Entity BillingSubscriptionEntity `json:"entity"`
}

type BillingSubscriptionEntity struct {
	ID           string `json:"id"`
	PlanID       string `json:"plan_id"`
	Status       string `json:"status"`
	CurrentStart *int64 `json:"current_start"`
	CurrentEnd   *int64 `json:"current_end"`
}

// Name returns the event name without its "subscription." namespace.
func (e *BillingWebhookEvent) Name() string {
	return strings.TrimPrefix(e.Event, "subscription.")
}

// ShopStatusFor reports which shop status an event implies, if any.
func (e *BillingWebhookEvent) ShopStatusFor() (ShopStatus, bool) {
	switch e.Name() {
	case "activated", "charged":
		return ShopStatusActive, true
	case "cancelled", "completed", "paused":
		return ShopStatusInactive, true
	}
	return "", false
}

func UnixPtr(ts *int64) *time.Time {
	if ts == nil || *ts == 0 {
		return nil
	}
	t := time.Unix(*ts, 0).UTC()
	return &t
}
