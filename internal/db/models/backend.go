package models

// Backend maps a provider to one of its upstream base URLs. A provider may own
// many URLs; the combination of (Provider, URL) must be unique. The
// auto-increment ID preserves insertion order, which the route table relies on
// for deterministic first-URL selection.
type Backend struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Provider string `gorm:"uniqueIndex:idx_provider_url;not null" json:"provider"`
	URL      string `gorm:"uniqueIndex:idx_provider_url;not null" json:"url"`
}

func (Backend) TableName() string {
	return "backends"
}
