package client

import (
	"context"
	"fmt"
	"time"

	"bakerlane-api/internal/config"
	"bakerlane-api/internal/model"
)

// BillingSubscription is what a provider returns for a newly created
// subscription, already mapped onto local statuses.
type BillingSubscription struct {
	ExternalID   string
	PlanID       string
	Status       model.SubscriptionStatus
	ApprovalURL  string
	CurrentStart *time.Time
	CurrentEnd   *time.Time
}

type BillingClient interface {
	Provider() string
	CreateSubscription(ctx context.Context, planID, shopID string) (*BillingSubscription, error)
}

// NewBillingClient picks the provider named in the billing config.
func NewBillingClient(cfg *config.Config) (BillingClient, error) {
	switch cfg.Billing.Provider {
	case "paypal":
		return NewPaypalClient(&cfg.Paypal), nil
	case "braintree":
		return NewBraintreeClient(&cfg.BrainTree), nil
	default:
		return nil, fmt.Errorf("unsupported billing provider %q", cfg.Billing.Provider)
	}
}
