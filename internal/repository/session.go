package repository

import (
	"context"

	"bakerlane-api/internal/model"

	"gorm.io/gorm"
)

type SessionRepository interface {
	ListByIdentity(ctx context.Context, tx *gorm.DB, identityID string) ([]*model.Session, error)
	Create(ctx context.Context, tx *gorm.DB, session *model.Session) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []string) error
	DeleteByIdentity(ctx context.Context, tx *gorm.DB, identityID string) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteOthers(ctx context.Context, identityID, keepID string) error

	CreateAdmin(ctx context.Context, session *model.AdminSession) error
	FindAdminByID(ctx context.Context, id string) (*model.AdminSession, error)
	DeleteAdmin(ctx context.Context, id string) (bool, error)
}

type sessionRepoImpl struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepoImpl{
		db: db,
	}
}

// ListByIdentity returns the identity's sessions oldest first. Seq decides
// the order; rows sharing a Seq fall back to creation time, then id.
func (r *sessionRepoImpl) ListByIdentity(ctx context.Context, tx *gorm.DB, identityID string) ([]*model.Session, error) {
	var sessions []*model.Session
	err := tx.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("seq ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *sessionRepoImpl) Create(ctx context.Context, tx *gorm.DB, session *model.Session) error {
	return tx.WithContext(ctx).Create(session).Error
}

func (r *sessionRepoImpl) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&model.Session{}).Error
}

func (r *sessionRepoImpl) DeleteByIdentity(ctx context.Context, tx *gorm.DB, identityID string) error {
	return tx.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Delete(&model.Session{}).Error
}

func (r *sessionRepoImpl) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("id = ?", id).
			First(&session).Error
	})
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// Delete reports whether a session was actually removed.
func (r *sessionRepoImpl) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Session{})

	return result.RowsAffected > 0, result.Error
}

func (r *sessionRepoImpl) DeleteOthers(ctx context.Context, identityID, keepID string) error {
	return r.db.WithContext(ctx).
		Where("identity_id = ? AND id <> ?", identityID, keepID).
		Delete(&model.Session{}).Error
}

func (r *sessionRepoImpl) CreateAdmin(ctx context.Context, session *model.AdminSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepoImpl) FindAdminByID(ctx context.Context, id string) (*model.AdminSession, error) {
	var session model.AdminSession
	err := readWithRetry(func() error {
		return r.db.WithContext(ctx).
			Where("id = ?", id).
			First(&session).Error
	})
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *sessionRepoImpl) DeleteAdmin(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.AdminSession{})

	return result.RowsAffected > 0, result.Error
}
