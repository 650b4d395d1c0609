package repository

import (
	"context"

	"bakerlane-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShopRepository interface {
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, shop *model.Shop) error
	FindByID(ctx context.Context, shopID string) (*model.Shop, error)
	FindByClientID(ctx context.Context, clientID string) (*model.Shop, error)
	FindByIDs(ctx context.Context, shopIDs []string) (map[string]*model.Shop, error)
	Update(ctx context.Context, shopID string, fields map[string]interface{}) error
	SetActive(ctx context.Context, shopID string, active bool) error
	SetStatus(ctx context.Context, tx *gorm.DB, shopID string, status model.ShopStatus) error
	IncrementTotalOrder(ctx context.Context, tx *gorm.DB, shopID string) error
	AdjustProductCount(ctx context.Context, tx *gorm.DB, shopID string, delta int) error
	UpdateRatingStats(ctx context.Context, tx *gorm.DB, shopID string, stats model.RatingStats) error
	Retire(ctx context.Context, tx *gorm.DB, clientID string) error
}

type shopRepoImpl struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepoImpl{
		db: db,
	}
}

// CreateIfAbsent inserts shop unless the seller already owns one.
func (r *shopRepoImpl) CreateIfAbsent(ctx context.Context, tx *gorm.DB, shop *model.Shop) error {
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "client_id"}}, DoNothing: true}).
		Create(shop).Error
}

func (r *shopRepoImpl) FindByID(ctx context.Context, shopID string) (*model.Shop, error) {
	var shop model.Shop
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("id = ?", shopID).
			First(&shop).Error
	})
	if err != nil {
		return nil, err
	}

	return &shop, nil
}

func (r *shopRepoImpl) FindByClientID(ctx context.Context, clientID string) (*model.Shop, error) {
	var shop model.Shop
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("client_id = ?", clientID).
			First(&shop).Error
	})
	if err != nil {
		return nil, err
	}

	return &shop, nil
}

func (r *shopRepoImpl) FindByIDs(ctx context.Context, shopIDs []string) (map[string]*model.Shop, error) {
	result := make(map[string]*model.Shop, len(shopIDs))
	if len(shopIDs) == 0 {
		return result, nil
	}

	var shops []*model.Shop
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("id IN ?", shopIDs).
			Find(&shops).Error
	})
	if err != nil {
		return nil, err
	}

	for _, shop := range shops {
		result[shop.ID] = shop
	}
	return result, nil
}

func (r *shopRepoImpl) Update(ctx context.Context, shopID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", shopID).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *shopRepoImpl) SetActive(ctx context.Context, shopID string, active bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", shopID).
		Update("is_active", active).Error
}

func (r *shopRepoImpl) SetStatus(ctx context.Context, tx *gorm.DB, shopID string, status model.ShopStatus) error {
	return tx.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", shopID).
		Update("status", status).Error
}

// IncrementTotalOrder bumps the counter in the database so concurrent
// orders never lose an update. A missing shop is reported as not found.
func (r *shopRepoImpl) IncrementTotalOrder(ctx context.Context, tx *gorm.DB, shopID string) error {
	result := tx.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", shopID).
		UpdateColumn("total_order", gorm.Expr("total_order + ?", 1))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *shopRepoImpl) AdjustProductCount(ctx context.Context, tx *gorm.DB, shopID string, delta int) error {
	return tx.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", shopID).
		UpdateColumn("product_count", gorm.Expr("product_count + ?", delta)).Error
}

func (r *shopRepoImpl) UpdateRatingStats(ctx context.Context, tx *gorm.DB, shopID string, stats model.RatingStats) error {
	return tx.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", shopID).
		Updates(map[string]interface{}{
			"average_rating": stats.Average,
			"total_reviews":  stats.Count,
		}).Error
}

// Retire closes the seller's shop after the account is removed. The row
// stays so past orders still resolve their shop.
func (r *shopRepoImpl) Retire(ctx context.Context, tx *gorm.DB, clientID string) error {
	return tx.WithContext(ctx).
		Model(&model.Shop{}).
		Where("client_id = ?", clientID).
		Updates(map[string]interface{}{
			"is_active":     false,
			"product_count": 0,
		}).Error
}
