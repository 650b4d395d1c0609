package repository

import (
	"context"

	"bakerlane-api/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) (bool, error)
}

type notificationRepoImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepoImpl{
		db: db,
	}
}

func (r *notificationRepoImpl) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepoImpl) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*model.Notification, error) {
	var notifications []*model.Notification
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("recipient_id = ?", recipientID).
			Order("created_at DESC").
			Limit(limit).
			Find(&notifications).Error
	})
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *notificationRepoImpl) MarkRead(ctx context.Context, recipientID, notificationID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", true)

	return result.RowsAffected > 0, result.Error
}
