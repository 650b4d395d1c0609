package repository

import (
	"context"

	"bakerlane-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OTPRepository interface {
	Upsert(ctx context.Context, otp *model.OTP) error
	Find(ctx context.Context, kind model.IdentityKind, email string) (*model.OTP, error)
	Delete(ctx context.Context, kind model.IdentityKind, email string) error
}

type otpRepoImpl struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepoImpl{
		db: db,
	}
}

// Upsert replaces any earlier code for the same address.
func (r *otpRepoImpl) Upsert(ctx context.Context, otp *model.OTP) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}, {Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "created_at"}),
	}).Create(otp).Error
}

func (r *otpRepoImpl) Find(ctx context.Context, kind model.IdentityKind, email string) (*model.OTP, error) {
	var otp model.OTP
	err := r.db.WithContext(ctx).
		Where("kind = ? AND email = ?", kind, email).
		First(&otp).Error
	if err != nil {
		return nil, err
	}

	return &otp, nil
}

func (r *otpRepoImpl) Delete(ctx context.Context, kind model.IdentityKind, email string) error {
	return r.db.WithContext(ctx).
		Where("kind = ? AND email = ?", kind, email).
		Delete(&model.OTP{}).Error
}
