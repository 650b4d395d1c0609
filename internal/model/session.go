package model

import "time"

// MaxSessionsPerIdentity is the number of live sessions an identity may hold.
// Logging in again evicts the oldest.
const MaxSessionsPerIdentity = 2

// Session is a buyer or seller login. Seq numbers an identity's sessions in
// login order; CreatedAt alone can tie at the database's clock resolution.
type Session struct {
	ID         string       `gorm:"primaryKey;size:36;not null"`
	IdentityID string       `gorm:"size:36;index:idx_session_identity_seq;not null"`
	Seq        int64        `gorm:"index:idx_session_identity_seq;not null"`
	Kind       IdentityKind `gorm:"size:16;not null"`
	ExpiresAt  time.Time    `gorm:"not null"`
	CreatedAt  time.Time    `gorm:"index"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// AdminSession has no per-admin cap.
type AdminSession struct {
	ID        string    `gorm:"primaryKey;size:36;not null"`
	AdminID   string    `gorm:"size:36;index;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

func (s *AdminSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// OTP is a one-time email verification code.
type OTP struct {
	Kind      IdentityKind `gorm:"primaryKey;size:16;not null"`
	Email     string       `gorm:"primaryKey;size:255;not null"`
	Code      string       `gorm:"size:6;not null"`
	ExpiresAt time.Time    `gorm:"not null"`
	CreatedAt time.Time
}

func (OTP) TableName() string { return "otps" }
