package models

import (
	"time"
)

type BaseModel struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TenantModel is embedded by every tenant-scoped row. Queries against these
// tables must always carry a site_id predicate.
type TenantModel struct {
	BaseModel
	SiteID string `gorm:"type:uuid;not null;index" json:"site_id"`
}
