package model

import "time"

// ErrorLog is a persisted record of a request that failed on the server
// side. IdentityID and AdminID are empty for anonymous requests.
type ErrorLog struct {
	ID         string    `gorm:"primaryKey;size:36;not null" json:"id"`
	Route      string    `gorm:"size:255;index;not null" json:"route"`
	Method     string    `gorm:"size:8;not null" json:"method"`
	Status     int       `gorm:"not null" json:"status"`
	Message    string    `gorm:"size:1024;not null" json:"message"`
	IdentityID string    `gorm:"size:36;index" json:"identityId,omitempty"`
	AdminID    string    `gorm:"size:36" json:"adminId,omitempty"`
	RequestID  string    `gorm:"size:64" json:"requestId,omitempty"`
	UserAgent  string    `gorm:"size:255" json:"userAgent,omitempty"`
	IP         string    `gorm:"size:64" json:"ip,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}
