package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	TenantModel
	UserID  string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Type    string         `gorm:"not null" json:"type"` // "lesson_completed", "course_completed", "certificate_issued", ...
	Title   string         `gorm:"not null" json:"title"`
	Message string         `json:"message,omitempty"`
	Data    datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`
	IsRead  bool           `gorm:"default:false" json:"is_read"`
	ReadAt  *time.Time     `json:"read_at,omitempty"`
}

type NotificationSettings struct {
	TenantModel
	UserID             string `gorm:"type:uuid;not null;index" json:"user_id"`
	EmailEnabled       bool   `gorm:"default:true" json:"email_enabled"`
	InAppEnabled       bool   `gorm:"default:true" json:"in_app_enabled"`
	CourseUpdates      bool   `gorm:"default:true" json:"course_updates"`
	ProgressMilestones bool   `gorm:"default:true" json:"progress_milestones"`
}
