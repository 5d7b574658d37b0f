package models

import (
	"gorm.io/datatypes"
)

// AdminAuditLog is append-only; written on admin mutations.
type AdminAuditLog struct {
	TenantModel
	ActorID    string         `gorm:"type:uuid;not null;index" json:"actor_id"`
	Action     string         `gorm:"not null" json:"action"`
	TargetType string         `gorm:"not null" json:"target_type"`
	TargetID   string         `json:"target_id,omitempty"`
	Metadata   datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
}
