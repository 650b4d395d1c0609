package client

import (
	"context"
	"fmt"

	"bakerlane-api/internal/config"
	"bakerlane-api/internal/model"

	"github.com/braintree-go/braintree-go"
)

type braintreeClientImpl struct {
	gateway      *braintree.Braintree
	paymentToken string
}

// NewBraintreeClient initializes the Braintree SDK gateway. Subscriptions are
// billed against the vaulted payment method named in config.
func NewBraintreeClient(cfg *config.Braintree) BillingClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway:      gateway,
		paymentToken: cfg.PaymentToken,
	}
}

func (c *braintreeClientImpl) Provider() string { return "braintree" }

func (c *braintreeClientImpl) CreateSubscription(ctx context.Context, planID, shopID string) (*BillingSubscription, error) {
	req := &braintree.SubscriptionRequest{
		PaymentMethodToken: c.paymentToken,
		PlanId:             planID,
	}

	sub, err := c.gateway.Subscription().Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	return &BillingSubscription{
		ExternalID: sub.Id,
		PlanID:     planID,
		Status:     braintreeStatus(string(sub.Status)),
	}, nil
}

func braintreeStatus(status string) model.SubscriptionStatus {
	switch status {
	case "Active":
		return model.SubscriptionActive
	case "Past Due":
		return model.SubscriptionHalted
	case "Canceled":
		return model.SubscriptionCancelled
	case "Expired":
		return model.SubscriptionCompleted
	default:
		return model.SubscriptionPending
	}
}
