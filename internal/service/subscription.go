package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/client"
	"bakerlane-api/internal/model"
	"bakerlane-api/internal/repository"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

type SubscriptionService interface {
	CreateSubscription(ctx context.Context, seller *model.Identity) (*model.Subscription, error)
	GetMySubscription(ctx context.Context, seller *model.Identity) (*model.Subscription, error)
	HandleBillingWebhook(ctx context.Context, signature, eventID string, body []byte) error
}

type subscriptionServiceImpl struct {
	db               *gorm.DB
	billingClient    client.BillingClient
	planID           string
	webhookSecret    string
	subscriptionRepo repository.SubscriptionRepository
	shopRepo         repository.ShopRepository
	webhookEventRepo repository.WebhookEventRepository
	logger           *log.Logger
}

func NewSubscriptionService(
	db *gorm.DB,
	billingClient client.BillingClient,
	planID string,
	webhookSecret string,
	subscriptionRepo repository.SubscriptionRepository,
	shopRepo repository.ShopRepository,
	webhookEventRepo repository.WebhookEventRepository,
	logger *log.Logger,
) SubscriptionService {
	return &subscriptionServiceImpl{
		db:               db,
		billingClient:    billingClient,
		planID:           planID,
		webhookSecret:    webhookSecret,
		subscriptionRepo: subscriptionRepo,
		shopRepo:         shopRepo,
		webhookEventRepo: webhookEventRepo,
		logger:           logger,
	}
}

func (s *subscriptionServiceImpl) CreateSubscription(ctx context.Context, seller *model.Identity) (*model.Subscription, error) {
	shop, err := s.shopRepo.FindByClientID(ctx, seller.ID)
	if err != nil {
		return nil, storeErr(err, "find shop", "shop")
	}

	active, err := s.subscriptionRepo.HasActiveSubscription(ctx, shop.ID)
	if err != nil {
		return nil, fmt.Errorf("check active subscription: %w", err)
	}
	if active {
		return nil, apperr.ErrSubscriptionActive
	}

	created, err := s.billingClient.CreateSubscription(ctx, s.planID, shop.ID)
	if err != nil {
		return nil, apperr.ErrUpstream.With("billing provider rejected the subscription").Wrap(err)
	}

	sub := &model.Subscription{
		ID:           uuid.NewString(),
		ClientID:     seller.ID,
		ShopID:       shop.ID,
		Provider:     s.billingClient.Provider(),
		ExternalID:   created.ExternalID,
		PlanID:       created.PlanID,
		Status:       created.Status,
		ApprovalURL:  created.ApprovalURL,
		CurrentStart: created.CurrentStart,
		CurrentEnd:   created.CurrentEnd,
	}
	if err := s.subscriptionRepo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("store subscription: %w", err)
	}

	return sub, nil
}

func (s *subscriptionServiceImpl) GetMySubscription(ctx context.Context, seller *model.Identity) (*model.Subscription, error) {
	shop, err := s.shopRepo.FindByClientID(ctx, seller.ID)
	if err != nil {
		return nil, storeErr(err, "find shop", "shop")
	}

	sub, err := s.subscriptionRepo.LatestForShop(ctx, shop.ID)
	if err != nil {
		return nil, storeErr(err, "find subscription", "subscription")
	}
	return sub, nil
}

// SignPayload returns the hex HMAC-SHA256 of body, the value the billing
// provider sends in its signature header.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *subscriptionServiceImpl) verifySignature(signature string, body []byte) bool {
	if s.webhookSecret == "" || signature == "" {
		return false
	}
	expected := SignPayload(s.webhookSecret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HandleBillingWebhook applies a signed subscription event. Unknown
// subscriptions and already processed event ids are acknowledged without
// changes so the provider stops retrying.
func (s *subscriptionServiceImpl) HandleBillingWebhook(ctx context.Context, signature, eventID string, body []byte) error {
	if !s.verifySignature(signature, body) {
		return apperr.ErrInvalidSignature
	}

	if eventID != "" {
		seen, err := s.webhookEventRepo.Exists(ctx, eventID)
		if err != nil {
			return fmt.Errorf("check webhook event: %w", err)
		}
		if seen {
			s.logger.Infoj(log.JSON{"msg": "webhook replay ignored", "event_id": eventID})
			return nil
		}
	}

	var event model.BillingWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperr.Validation("malformed webhook payload", nil)
	}
	entity := event.Payload.Subscription.Entity
	if entity.ID == "" {
		return apperr.Validation("webhook payload has no subscription id", nil)
	}

	sub, err := s.subscriptionRepo.GetByExternalID(ctx, entity.ID)
	if err != nil {
		if isNotFound(err) {
			s.logger.Warnj(log.JSON{"msg": "webhook for unknown subscription", "event": event.Event, "subscription": entity.ID})
			return nil
		}
		return fmt.Errorf("find subscription: %w", err)
	}

	status := model.SubscriptionStatus(entity.Status)
	if !status.Valid() {
		status = sub.Status
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.subscriptionRepo.UpdateFromBilling(ctx, tx, sub.ID, status, model.UnixPtr(entity.CurrentStart), model.UnixPtr(entity.CurrentEnd)); err != nil {
			return fmt.Errorf("update subscription: %w", err)
		}

		if shopStatus, ok := event.ShopStatusFor(); ok {
			if err := s.shopRepo.SetStatus(ctx, tx, sub.ShopID, shopStatus); err != nil {
				return fmt.Errorf("update shop status: %w", err)
			}
		}

		if eventID != "" {
			if err := s.webhookEventRepo.MarkProcessed(ctx, tx, eventID, event.Event); err != nil {
				return fmt.Errorf("record webhook event: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Infoj(log.JSON{"msg": "billing event applied", "event": event.Event, "subscription": sub.ID, "status": status})
	return nil
}
