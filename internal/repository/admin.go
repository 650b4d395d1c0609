package repository

import (
	"context"

	"bakerlane-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminRepository interface {
	CreateIfAbsent(ctx context.Context, admin *model.Admin) (bool, error)
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
	FindByID(ctx context.Context, id string) (*model.Admin, error)
}

type adminRepoImpl struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepoImpl{
		db: db,
	}
}

func (r *adminRepoImpl) CreateIfAbsent(ctx context.Context, admin *model.Admin) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(admin)

	return result.RowsAffected > 0, result.Error
}

func (r *adminRepoImpl) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("email = ?", model.NormalizeEmail(email)).
			First(&admin).Error
	})
	if err != nil {
		return nil, err
	}

	return &admin, nil
}

func (r *adminRepoImpl) FindByID(ctx context.Context, id string) (*model.Admin, error) {
	var admin model.Admin
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("id = ?", id).
			First(&admin).Error
	})
	if err != nil {
		return nil, err
	}

	return &admin, nil
}
