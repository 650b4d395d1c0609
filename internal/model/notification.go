package model

import "time"

type TemplateKind string

const (
	TemplateOrderConfirmation TemplateKind = "order_confirmation"
	TemplateOrderAlert        TemplateKind = "order_alert"
	TemplateOrderStatus       TemplateKind = "order_status"
	TemplateOTP               TemplateKind = "otp"
)

// Notification is the in-app copy of an outbound message.
type Notification struct {
	ID            string       `gorm:"primaryKey;size:36;not null" json:"id"`
	RecipientID   string       `gorm:"size:36;index;not null" json:"recipientId"`
	RecipientKind IdentityKind `gorm:"size:16;not null" json:"recipientKind"`
	Kind          TemplateKind `gorm:"size:32;not null" json:"kind"`
	Message       string       `gorm:"size:1024;not null" json:"message"`
	Link          string       `gorm:"size:255" json:"link,omitempty"`
	IsRead        bool         `gorm:"not null" json:"isRead"`
	CreatedAt     time.Time    `json:"createdAt"`
}
