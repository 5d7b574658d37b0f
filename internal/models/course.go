package models

import "time"

type Category struct {
	TenantModel
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"not null;index" json:"slug"`
	Description string `json:"description,omitempty"`
}

type Course struct {
	TenantModel
	Title              string     `gorm:"not null" json:"title"`
	Description        string     `json:"description,omitempty"`
	CategoryID         *string    `gorm:"type:uuid;index" json:"category_id,omitempty"`
	InstructorID       string     `gorm:"type:uuid;not null;index" json:"instructor_id"`
	CoverURL           string     `json:"cover_url,omitempty"`
	IsPublished        bool       `gorm:"default:false" json:"is_published"`
	PublishedAt        *time.Time `json:"published_at,omitempty"`
	TokenReward        int        `gorm:"default:0" json:"token_reward"`
	CertificateEnabled bool       `gorm:"default:false" json:"certificate_enabled"`
	// Denormalized; drifts under concurrency, reconciled by the counter worker.
	TotalStudents int `gorm:"default:0" json:"total_students"`
}

type Section struct {
	TenantModel
	CourseID string `gorm:"type:uuid;not null;index" json:"course_id"`
	Title    string `gorm:"not null" json:"title"`
	Position int    `gorm:"default:0" json:"position"`
}

// Lesson belongs to exactly one course. SectionID, when set, must reference
// a section of that same course; cross-course assignment is refused at the
// service layer.
type Lesson struct {
	TenantModel
	CourseID    string     `gorm:"type:uuid;not null;index" json:"course_id"`
	SectionID   *string    `gorm:"type:uuid;index" json:"section_id,omitempty"`
	Title       string     `gorm:"not null" json:"title"`
	Type        LessonType `gorm:"type:varchar(20);not null;default:'video'" json:"type"`
	Content     string     `json:"content,omitempty"`
	MediaURL    string     `json:"media_url,omitempty"`
	Duration    int        `gorm:"default:0" json:"duration"` // seconds
	Position    int        `gorm:"default:0" json:"position"`
	IsPublished bool       `gorm:"default:false" json:"is_published"`
}

type Cohort struct {
	TenantModel
	CourseID         string     `gorm:"type:uuid;not null;index" json:"course_id"`
	Name             string     `gorm:"not null" json:"name"`
	StartsAt         *time.Time `json:"starts_at,omitempty"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
	MaxStudents      int        `gorm:"default:0" json:"max_students"` // 0 = unlimited
	RegistrationOpen bool       `gorm:"default:true" json:"registration_open"`
	// Denormalized; drifts under concurrency, reconciled by the counter worker.
	TotalStudents int `gorm:"default:0" json:"total_students"`
}
