package repository

import (
	"context"

	"bakerlane-api/internal/model"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, tx *gorm.DB, review *model.Review) error
	ExistsForOrder(ctx context.Context, tx *gorm.DB, orderID string) (bool, error)
	ProductStats(ctx context.Context, tx *gorm.DB, productID string) (model.RatingStats, error)
	ShopStats(ctx context.Context, tx *gorm.DB, shopID string) (model.RatingStats, error)
	ListByProduct(ctx context.Context, productID string) ([]*model.Review, error)
}

type reviewRepoImpl struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepoImpl{
		db: db,
	}
}

func (r *reviewRepoImpl) Create(ctx context.Context, tx *gorm.DB, review *model.Review) error {
	return tx.WithContext(ctx).Create(review).Error
}

func (r *reviewRepoImpl) ExistsForOrder(ctx context.Context, tx *gorm.DB, orderID string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&model.Review{}).
		Where("order_id = ?", orderID).
		Count(&count).Error

	return count > 0, err
}

type ratingRow struct {
	Average *float64
	Count   int64
}

// ProductStats recomputes the rating over every review of the product.
func (r *reviewRepoImpl) ProductStats(ctx context.Context, tx *gorm.DB, productID string) (model.RatingStats, error) {
	var row ratingRow
	err := tx.WithContext(ctx).
		Model(&model.Review{}).
		Select("AVG(rating) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).Error

	return row.stats(), err
}

// ShopStats aggregates across every review whose order belongs to the shop.
func (r *reviewRepoImpl) ShopStats(ctx context.Context, tx *gorm.DB, shopID string) (model.RatingStats, error) {
	var row ratingRow
	err := tx.WithContext(ctx).
		Model(&model.Review{}).
		Select("AVG(reviews.rating) AS average, COUNT(*) AS count").
		Joins("JOIN orders ON orders.id = reviews.order_id").
		Where("orders.shop_id = ?", shopID).
		Scan(&row).Error

	return row.stats(), err
}

func (r ratingRow) stats() model.RatingStats {
	stats := model.RatingStats{Count: r.Count}
	if r.Average != nil {
		stats.Average = *r.Average
	}
	return stats
}

func (r *reviewRepoImpl) ListByProduct(ctx context.Context, productID string) ([]*model.Review, error) {
	var reviews []*model.Review
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("product_id = ?", productID).
			Order("created_at DESC").
			Find(&reviews).Error
	})
	if err != nil {
		return nil, err
	}

	return reviews, nil
}
