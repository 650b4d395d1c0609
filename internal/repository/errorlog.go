package repository

import (
	"context"

	"bakerlane-api/internal/model"

	"gorm.io/gorm"
)

type ErrorLogRepository interface {
	Create(ctx context.Context, entry *model.ErrorLog) error
	ListRecent(ctx context.Context, limit int) ([]*model.ErrorLog, error)
}

type errorLogRepoImpl struct {
	db *gorm.DB
}

func NewErrorLogRepository(db *gorm.DB) ErrorLogRepository {
	return &errorLogRepoImpl{
		db: db,
	}
}

func (r *errorLogRepoImpl) Create(ctx context.Context, entry *model.ErrorLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListRecent returns at most limit entries, newest first.
func (r *errorLogRepoImpl) ListRecent(ctx context.Context, limit int) ([]*model.ErrorLog, error) {
	var entries []*model.ErrorLog
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Order("created_at DESC").
			Limit(limit).
			Find(&entries).Error
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
