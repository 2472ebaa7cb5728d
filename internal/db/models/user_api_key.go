package models

import "time"

// UserAPIKey is a client-facing API key record. Keys are managed over the
// admin channel; IDs are assigned by the database and never reused.
//
// The /v1 surface does not consult these keys yet - they are persisted and
// administratively manageable only.
type UserAPIKey struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	APIKey      string    `gorm:"column:api_key;uniqueIndex;not null" json:"api_key"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
}

func (UserAPIKey) TableName() string {
	return "user_api_keys"
}
