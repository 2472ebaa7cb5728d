package models

// ModelMapping assigns a user-facing model name to exactly one provider.
// Re-adding an existing model name replaces its provider.
type ModelMapping struct {
	ModelName string `gorm:"primaryKey" json:"model_name"`
	Provider  string `gorm:"not null" json:"provider"`
}

func (ModelMapping) TableName() string {
	return "model_mappings"
}
