package repository

import (
	"context"
	"time"

	"bakerlane-api/internal/model"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub *model.Subscription) error
	HasActiveSubscription(ctx context.Context, shopID string) (bool, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Subscription, error)
	LatestForShop(ctx context.Context, shopID string) (*model.Subscription, error)
	UpdateFromBilling(ctx context.Context, tx *gorm.DB, id string, status model.SubscriptionStatus, start, end *time.Time) error
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepoImpl{
		db: db,
	}
}

func (r *subscriptionRepoImpl) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepoImpl) HasActiveSubscription(ctx context.Context, shopID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("shop_id = ? AND status = ?", shopID, model.SubscriptionActive).
		Count(&count).Error

	return count > 0, err
}

func (r *subscriptionRepoImpl) GetByExternalID(ctx context.Context, externalID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("external_id = ?", externalID).
			First(&sub).Error
	})
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepoImpl) LatestForShop(ctx context.Context, shopID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("shop_id = ?", shopID).
			Order("created_at DESC").
			First(&sub).Error
	})
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

// UpdateFromBilling records the provider's view of the subscription. Period
// bounds are only overwritten when the provider sent them.
func (r *subscriptionRepoImpl) UpdateFromBilling(ctx context.Context, tx *gorm.DB, id string, status model.SubscriptionStatus, start, end *time.Time) error {
	fields := map[string]interface{}{
		"status": status,
	}
	if start != nil {
		fields["current_start"] = *start
	}
	if end != nil {
		fields["current_end"] = *end
	}

	return tx.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", id).
		Updates(fields).Error
}
