package model

import (
	"strings"
	"time"
)

type IdentityKind string

const (
	KindBuyer  IdentityKind = "buyer"
	KindSeller IdentityKind = "seller"
)

func (k IdentityKind) Valid() bool {
	return k == KindBuyer || k == KindSeller
}

// Identity is a buyer ("user") or seller ("client") account. Both kinds share
// one table; email and phone are unique per kind.
type Identity struct {
	ID           string       `gorm:"primaryKey;size:36;not null" json:"id"`
	Kind         IdentityKind `gorm:"size:16;not null;uniqueIndex:idx_identity_kind_email;uniqueIndex:idx_identity_kind_phone" json:"kind"`
	Name         string       `gorm:"size:128;not null" json:"name"`
	Email        *string      `gorm:"size:255;uniqueIndex:idx_identity_kind_email" json:"email,omitempty"`
	Phone        *string      `gorm:"size:32;uniqueIndex:idx_identity_kind_phone" json:"phone,omitempty"`
	PasswordHash string       `gorm:"size:255;not null" json:"-"`
	IsVerified   bool         `gorm:"not null" json:"isVerified"`

	// [longitude, latitude], sellers only
	Longitude *float64 `json:"longitude,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`

	// delivery address, buyers only
	Address Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Address struct {
	FlatNo       string `gorm:"size:64" json:"flatNo"`
	BuildingName string `gorm:"size:128" json:"buildingName"`
	Area         string `gorm:"size:128" json:"area"`
	City         string `gorm:"size:64" json:"city"`
	Pincode      string `gorm:"size:6" json:"pincode"`
	State        string `gorm:"size:64" json:"state"`
}

func (i *Identity) EmailValue() string {
	if i.Email == nil {
		return ""
	}
	return *i.Email
}

func (i *Identity) PhoneValue() string {
	if i.Phone == nil {
		return ""
	}
	return *i.Phone
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsEmail reports whether a login contact should be matched against email
// rather than phone.
func IsEmail(contact string) bool {
	return strings.Contains(contact, "@")
}

type AdminRole string

const (
	RoleSuperAdmin AdminRole = "superadmin"
	RoleModerator  AdminRole = "moderator"
)

type Admin struct {
	ID           string    `gorm:"primaryKey;size:36;not null" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         AdminRole `gorm:"size:16;not null" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
