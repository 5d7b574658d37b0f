package models

import "time"

// Enrollment links a user to a course, optionally inside a cohort. One
// active enrollment per (user, course, cohort). ProgressPercentage is a
// materialized roll-up of per-lesson state.
type Enrollment struct {
	TenantModel
	UserID              string           `gorm:"type:uuid;not null;index" json:"user_id"`
	CourseID            string           `gorm:"type:uuid;not null;index" json:"course_id"`
	CohortID            *string          `gorm:"type:uuid;index" json:"cohort_id,omitempty"`
	Status              EnrollmentStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	ProgressPercentage  int              `gorm:"default:0" json:"progress_percentage"`
	EnrolledAt          time.Time        `gorm:"default:now()" json:"enrolled_at"`
	CompletedAt         *time.Time       `json:"completed_at,omitempty"`
	LastAccessedAt      *time.Time       `json:"last_accessed_at,omitempty"`
	CertificateIssuedAt *time.Time       `json:"certificate_issued_at,omitempty"`
}

// LessonProgress is the per-(user, lesson) state row the progress engine
// maintains. Completed implies CompletedAt set and percentage 100.
type LessonProgress struct {
	TenantModel
	UserID             string         `gorm:"type:uuid;not null;index:idx_lesson_progress_user_lesson" json:"user_id"`
	LessonID           string         `gorm:"type:uuid;not null;index:idx_lesson_progress_user_lesson" json:"lesson_id"`
	CourseID           string         `gorm:"type:uuid;not null;index" json:"course_id"`
	Status             ProgressStatus `gorm:"type:varchar(20);not null;default:'not_started'" json:"status"`
	ProgressPercentage int            `gorm:"default:0" json:"progress_percentage"`
	LastPosition       int            `gorm:"default:0" json:"last_position"` // seconds
	TimeSpent          int            `gorm:"default:0" json:"time_spent"`   // seconds
	Notes              string         `json:"notes,omitempty"`
	StartedAt          *time.Time     `json:"started_at,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
}
