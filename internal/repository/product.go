package repository

import (
	"context"

	"bakerlane-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(ctx context.Context, tx *gorm.DB, product *model.Product) error
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	FindMany(ctx context.Context, tx *gorm.DB, productIDs []string) ([]*model.Product, error)
	ListByShop(ctx context.Context, shopID string, activeOnly bool) ([]*model.Product, error)
	ListAll(ctx context.Context) ([]*model.Product, error)
	Update(ctx context.Context, productID string, fields map[string]interface{}) error
	AppendImages(ctx context.Context, productID string, urls []string) (*model.Product, error)
	ToggleActive(ctx context.Context, productID string) (*model.Product, error)
	Delete(ctx context.Context, tx *gorm.DB, productID string) (bool, error)
	DeleteByClient(ctx context.Context, tx *gorm.DB, clientID string) ([]*model.Product, error)
	UpdateRatingStats(ctx context.Context, tx *gorm.DB, productID string, stats model.RatingStats) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Create(ctx context.Context, tx *gorm.DB, product *model.Product) error {
	return tx.WithContext(ctx).Create(product).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("id = ?", productID).
			First(&product).Error
	})
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindMany(ctx context.Context, tx *gorm.DB, productIDs []string) ([]*model.Product, error) {
	var products []*model.Product
	err := tx.WithContext(ctx).
		Where("id IN ?", productIDs).
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) ListByShop(ctx context.Context, shopID string, activeOnly bool) ([]*model.Product, error) {
	var products []*model.Product
	err := readWithRetry(func() error {
		query := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
		if activeOnly {
			query = query.Where("is_active = ?", true)
		}
		return query.Order("created_at DESC").Find(&products).Error
	})
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) ListAll(ctx context.Context) ([]*model.Product, error) {
	var products []*model.Product
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error
	})
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) Update(ctx context.Context, productID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepoImpl) AppendImages(ctx context.Context, productID string, urls []string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", productID).
			First(&product).Error; err != nil {
			return err
		}

		product.Images = append(product.Images, urls...)
		return tx.Model(&product).Update("images", product.Images).Error
	})
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) ToggleActive(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Product{}).
			Where("id = ?", productID).
			UpdateColumn("is_active", gorm.Expr("NOT is_active"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("id = ?", productID).First(&product).Error
	})
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) Delete(ctx context.Context, tx *gorm.DB, productID string) (bool, error) {
	result := tx.WithContext(ctx).
		Where("id = ?", productID).
		Delete(&model.Product{})

	return result.RowsAffected > 0, result.Error
}

// DeleteByClient removes every product the seller owns and returns the
// removed rows so callers can clean up their images.
func (r *productRepoImpl) DeleteByClient(ctx context.Context, tx *gorm.DB, clientID string) ([]*model.Product, error) {
	var products []*model.Product
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("client_id = ?", clientID).
		Find(&products).Error; err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}

	err := tx.WithContext(ctx).
		Where("client_id = ?", clientID).
		Delete(&model.Product{}).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) UpdateRatingStats(ctx context.Context, tx *gorm.DB, productID string, stats model.RatingStats) error {
	return tx.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"average_rating": stats.Average,
			"review_count":   stats.Count,
		}).Error
}
