package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func billingEvent(event, subscriptionID, status string, start, end int64) []byte {
	return []byte(fmt.Sprintf(
		`{"event":%q,"created_at":%d,"payload":{"subscription":{"entity":{"id":%q,"plan_id":"plan_monthly","status":%q,"current_start":%d,"current_end":%d}}}}`,
		event, start, subscriptionID, status, start, end,
	))
}

func TestCreateSubscription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, shop := f.seller(t, "oven")

	sub, err := f.subscriptions.CreateSubscription(ctx, seller)
	require.NoError(t, err)
	assert.Equal(t, shop.ID, sub.ShopID)
	assert.Equal(t, seller.ID, sub.ClientID)
	assert.Equal(t, model.SubscriptionCreated, sub.Status)
	assert.Equal(t, "stub", sub.Provider)
	assert.NotEmpty(t, sub.ApprovalURL)

	latest, err := f.subscriptions.GetMySubscription(ctx, seller)
	require.NoError(t, err)
	assert.Equal(t, sub.ExternalID, latest.ExternalID)

	// a created-but-unpaid subscription does not block a retry
	_, err = f.subscriptions.CreateSubscription(ctx, seller)
	require.NoError(t, err)
	assert.Equal(t, 2, f.billing.calls)
}

func TestCreateSubscriptionConflictsWhenActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, _ := f.seller(t, "oven")

	sub, err := f.subscriptions.CreateSubscription(ctx, seller)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&model.Subscription{}).Where("id = ?", sub.ID).Update("status", model.SubscriptionActive).Error)

	_, err = f.subscriptions.CreateSubscription(ctx, seller)
	assert.ErrorIs(t, err, apperr.ErrSubscriptionActive)
	assert.Equal(t, 1, f.billing.calls)
}

func TestCreateSubscriptionFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shopless := f.register(t, model.KindSeller, "newcomer")
	_, err := f.subscriptions.CreateSubscription(ctx, shopless)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.subscriptions.GetMySubscription(ctx, shopless)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	seller, _ := f.seller(t, "oven")
	_, err = f.subscriptions.GetMySubscription(ctx, seller)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	f.billing.err = errors.New("provider down")
	_, err = f.subscriptions.CreateSubscription(ctx, seller)
	assert.ErrorIs(t, err, apperr.ErrUpstream)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))

	var count int64
	require.NoError(t, f.db.Model(&model.Subscription{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBillingWebhookRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, shop := f.seller(t, "oven")
	sub, err := f.subscriptions.CreateSubscription(ctx, seller)
	require.NoError(t, err)

	body := billingEvent("subscription.activated", sub.ExternalID, "active", 1767225600, 1769904000)

	for name, signature := range map[string]string{
		"missing":    "",
		"wrong key":  SignPayload("other-secret", body),
		"not hex":    "zz-not-a-signature",
		"other body": SignPayload(testWebhookSecret, []byte(`{}`)),
	} {
		t.Run(name, func(t *testing.T) {
			err := f.subscriptions.HandleBillingWebhook(ctx, signature, "evt_1", body)
			assert.ErrorIs(t, err, apperr.ErrInvalidSignature)
		})
	}

	latest, err := f.subscriptionRepo.GetByExternalID(ctx, sub.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionCreated, latest.Status)
	assert.Equal(t, model.ShopStatusInactive, f.reloadShop(t, shop.ID).Status)
}

func TestBillingWebhookSyncsSubscriptionAndShop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, shop := f.seller(t, "oven")
	sub, err := f.subscriptions.CreateSubscription(ctx, seller)
	require.NoError(t, err)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	body := billingEvent("subscription.activated", sub.ExternalID, "active", start.Unix(), end.Unix())

	require.NoError(t, f.subscriptions.HandleBillingWebhook(ctx, SignPayload(testWebhookSecret, body), "evt_activate", body))

	stored, err := f.subscriptionRepo.GetByExternalID(ctx, sub.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionActive, stored.Status)
	require.NotNil(t, stored.CurrentStart)
	require.NotNil(t, stored.CurrentEnd)
	assert.True(t, start.Equal(*stored.CurrentStart))
	assert.True(t, end.Equal(*stored.CurrentEnd))
	assert.Equal(t, model.ShopStatusActive, f.reloadShop(t, shop.ID).Status)

	body = billingEvent("subscription.cancelled", sub.ExternalID, "cancelled", start.Unix(), end.Unix())
	require.NoError(t, f.subscriptions.HandleBillingWebhook(ctx, SignPayload(testWebhookSecret, body), "evt_cancel", body))

	stored, err = f.subscriptionRepo.GetByExternalID(ctx, sub.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionCancelled, stored.Status)
	assert.Equal(t, model.ShopStatusInactive, f.reloadShop(t, shop.ID).Status)
}

func TestBillingWebhookIgnoresReplaysAndUnknownSubscriptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, shop := f.seller(t, "oven")
	sub, err := f.subscriptions.CreateSubscription(ctx, seller)
	require.NoError(t, err)

	activated := billingEvent("subscription.activated", sub.ExternalID, "active", 1767225600, 1769904000)
	require.NoError(t, f.subscriptions.HandleBillingWebhook(ctx, SignPayload(testWebhookSecret, activated), "evt_1", activated))

	// the same event id again is acknowledged without touching state, even
	// when the body would now say something else
	cancelled := billingEvent("subscription.cancelled", sub.ExternalID, "cancelled", 1767225600, 1769904000)
	require.NoError(t, f.subscriptions.HandleBillingWebhook(ctx, SignPayload(testWebhookSecret, cancelled), "evt_1", cancelled))
	assert.Equal(t, model.ShopStatusActive, f.reloadShop(t, shop.ID).Status)

	// without an event id the same payload is idempotent on its own
	for i := 0; i < 2; i++ {
		require.NoError(t, f.subscriptions.HandleBillingWebhook(ctx, SignPayload(testWebhookSecret, activated), "", activated))
	}
	stored, err := f.subscriptionRepo.GetByExternalID(ctx, sub.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionActive, stored.Status)

	unknown := billingEvent("subscription.activated", "sub_unknown", "active", 1767225600, 1769904000)
	assert.NoError(t, f.subscriptions.HandleBillingWebhook(ctx, SignPayload(testWebhookSecret, unknown), "evt_2", unknown))

	malformed := []byte(`{"event":`)
	err = f.subscriptions.HandleBillingWebhook(ctx, SignPayload(testWebhookSecret, malformed), "evt_3", malformed)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestBillingWebhookKeepsStatusOnUnknownValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, _ := f.seller(t, "oven")
	sub, err := f.subscriptions.CreateSubscription(ctx, seller)
	require.NoError(t, err)

	body := billingEvent("subscription.updated", sub.ExternalID, "mystery", 0, 0)
	require.NoError(t, f.subscriptions.HandleBillingWebhook(ctx, SignPayload(testWebhookSecret, body), "", body))

	stored, err := f.subscriptionRepo.GetByExternalID(ctx, sub.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionCreated, stored.Status)
	assert.Nil(t, stored.CurrentStart)
}
