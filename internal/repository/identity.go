package repository

import (
	"context"

	"bakerlane-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IdentityRepository interface {
	Create(ctx context.Context, identity *model.Identity) error
	FindByContact(ctx context.Context, kind model.IdentityKind, contact string) (*model.Identity, error)
	FindByID(ctx context.Context, kind model.IdentityKind, id string) (*model.Identity, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.Identity, error)
	FindByEmail(ctx context.Context, kind model.IdentityKind, email string) (*model.Identity, error)
	ExistsByContact(ctx context.Context, kind model.IdentityKind, email, phone *string) (bool, error)
	LockForUpdate(ctx context.Context, tx *gorm.DB, id string) error
	MarkVerified(ctx context.Context, kind model.IdentityKind, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error
	List(ctx context.Context, kind model.IdentityKind) ([]*model.Identity, error)
	Delete(ctx context.Context, tx *gorm.DB, kind model.IdentityKind, id string) error
}

type identityRepoImpl struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &identityRepoImpl{
		db: db,
	}
}

func (r *identityRepoImpl) Create(ctx context.Context, identity *model.Identity) error {
	return r.db.WithContext(ctx).Create(identity).Error
}

func (r *identityRepoImpl) FindByContact(ctx context.Context, kind model.IdentityKind, contact string) (*model.Identity, error) {
	if model.IsEmail(contact) {
		return r.FindByEmail(ctx, kind, contact)
	}

	var identity model.Identity
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("kind = ? AND phone = ?", kind, contact).
			First(&identity).Error
	})
	if err != nil {
		return nil, err
	}

	return &identity, nil
}

func (r *identityRepoImpl) FindByEmail(ctx context.Context, kind model.IdentityKind, email string) (*model.Identity, error) {
	var identity model.Identity
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("kind = ? AND email = ?", kind, model.NormalizeEmail(email)).
			First(&identity).Error
	})
	if err != nil {
		return nil, err
	}

	return &identity, nil
}

func (r *identityRepoImpl) FindByID(ctx context.Context, kind model.IdentityKind, id string) (*model.Identity, error) {
	var identity model.Identity
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("id = ? AND kind = ?", id, kind).
			First(&identity).Error
	})
	if err != nil {
		return nil, err
	}

	return &identity, nil
}

func (r *identityRepoImpl) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Identity, error) {
	result := make(map[string]*model.Identity, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var identities []*model.Identity
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("id IN ?", ids).
			Find(&identities).Error
	})
	if err != nil {
		return nil, err
	}

	for _, identity := range identities {
		result[identity.ID] = identity
	}
	return result, nil
}

func (r *identityRepoImpl) ExistsByContact(ctx context.Context, kind model.IdentityKind, email, phone *string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&model.Identity{}).Where("kind = ?", kind)

	switch {
	case email != nil && phone != nil:
		query = query.Where("email = ? OR phone = ?", *email, *phone)
	case email != nil:
		query = query.Where("email = ?", *email)
	case phone != nil:
		query = query.Where("phone = ?", *phone)
	default:
		return false, nil
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// LockForUpdate takes a row lock on the identity for the rest of tx. SQLite
// has no row locks and serialises writers instead.
func (r *identityRepoImpl) LockForUpdate(ctx context.Context, tx *gorm.DB, id string) error {
	var identity model.Identity
	return tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		First(&identity).Error
}

func (r *identityRepoImpl) MarkVerified(ctx context.Context, kind model.IdentityKind, id string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Identity{}).
		Where("id = ? AND kind = ?", id, kind).
		Update("is_verified", true)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *identityRepoImpl) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&model.Identity{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (r *identityRepoImpl) UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Identity{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *identityRepoImpl) List(ctx context.Context, kind model.IdentityKind) ([]*model.Identity, error) {
	var identities []*model.Identity
	err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("created_at DESC").
		Find(&identities).Error
	if err != nil {
		return nil, err
	}

	return identities, nil
}

// Delete removes the account. A missing id of that kind is reported as not
// found.
func (r *identityRepoImpl) Delete(ctx context.Context, tx *gorm.DB, kind model.IdentityKind, id string) error {
	result := tx.WithContext(ctx).
		Where("id = ? AND kind = ?", id, kind).
		Delete(&model.Identity{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
