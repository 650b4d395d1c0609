package repository

import (
	"context"

	"bakerlane-api/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error)
	HasPendingForProduct(ctx context.Context, tx *gorm.DB, userID, productID string) (bool, error)
	CompareAndSetStatus(ctx context.Context, tx *gorm.DB, orderID string, from, to model.OrderStatus) (bool, error)
	UpdateTotal(ctx context.Context, tx *gorm.DB, orderID string, total decimal.Decimal) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, orderID string) error
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	ListByShop(ctx context.Context, shopID string) ([]*model.Order, error)
	CountByShop(ctx context.Context, shopID string) (int64, error)

	CreateClaims(ctx context.Context, tx *gorm.DB, claims []*model.PendingOrderClaim) error
	ReleaseClaims(ctx context.Context, tx *gorm.DB, orderID string) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

// Create stores the order together with its items.
func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order *model.Order
	err := readWithRetry(func() error {
		var err error
		order, err = r.FindByIDTx(ctx, r.db, orderID)
		return err
	})
	return order, err
}

func (r *orderRepoImpl) FindByIDTx(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) HasPendingForProduct(ctx context.Context, tx *gorm.DB, userID, productID string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&model.Order{}).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.user_id = ? AND orders.order_status = ? AND order_items.product_id = ?",
			userID, model.OrderPending, productID).
		Count(&count).Error

	return count > 0, err
}

// CompareAndSetStatus moves the order from one status to another only if it
// is still in from. false means someone else changed it first.
func (r *orderRepoImpl) CompareAndSetStatus(ctx context.Context, tx *gorm.DB, orderID string, from, to model.OrderStatus) (bool, error) {
	result := tx.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND order_status = ?", orderID, from).
		Update("order_status", to)

	return result.RowsAffected > 0, result.Error
}

func (r *orderRepoImpl) UpdateTotal(ctx context.Context, tx *gorm.DB, orderID string, total decimal.Decimal) (bool, error) {
	result := tx.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND order_status NOT IN ?", orderID, []model.OrderStatus{model.OrderDelivered, model.OrderCancelled}).
		Update("total_amount", total)

	return result.RowsAffected > 0, result.Error
}

func (r *orderRepoImpl) Delete(ctx context.Context, tx *gorm.DB, orderID string) error {
	if err := tx.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	if err := r.ReleaseClaims(ctx, tx, orderID); err != nil {
		return err
	}

	result := tx.WithContext(ctx).Where("id = ?", orderID).Delete(&model.Order{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	var orders []*model.Order
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Preload("Items").
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Find(&orders).Error
	})
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) ListByShop(ctx context.Context, shopID string) ([]*model.Order, error) {
	var orders []*model.Order
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Preload("Items").
			Where("shop_id = ?", shopID).
			Order("created_at DESC").
			Find(&orders).Error
	})
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) CountByShop(ctx context.Context, shopID string) (int64, error) {
	var count int64
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Model(&model.Order{}).
			Where("shop_id = ?", shopID).
			Count(&count).Error
	})
	return count, err
}

func (r *orderRepoImpl) CreateClaims(ctx context.Context, tx *gorm.DB, claims []*model.PendingOrderClaim) error {
	if len(claims) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&claims).Error
}

func (r *orderRepoImpl) ReleaseClaims(ctx context.Context, tx *gorm.DB, orderID string) error {
	return tx.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&model.PendingOrderClaim{}).Error
}
