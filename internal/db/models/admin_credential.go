package models

// AdminCredential stores opaque authentication material for a backend provider.
// The name is the lookup key; credentials are an opaque string the gateway
// never interprets (typically an API key or a serialized token blob).
type AdminCredential struct {
	Name        string `gorm:"primaryKey" json:"name"`
	Credentials string `gorm:"not null" json:"credentials"`
}

// TableName keeps the table compatible with existing sopy_admin.db files.
func (AdminCredential) TableName() string {
	return "admin_credentials"
}
