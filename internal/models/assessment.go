package models

import (
	"time"

	"gorm.io/datatypes"
)

type Quiz struct {
	TenantModel
	CourseID     string  `gorm:"type:uuid;not null;index" json:"course_id"`
	LessonID     *string `gorm:"type:uuid;index" json:"lesson_id,omitempty"`
	Title        string  `gorm:"not null" json:"title"`
	Description  string  `json:"description,omitempty"`
	PassingScore int     `gorm:"default:60" json:"passing_score"` // percent
	MaxAttempts  int     `gorm:"default:3" json:"max_attempts"`   // 0 = unlimited
	TimeLimit    int     `gorm:"default:0" json:"time_limit"`     // seconds, 0 = none
	IsPublished  bool    `gorm:"default:false" json:"is_published"`
}

type QuizQuestion struct {
	TenantModel
	QuizID        string         `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Text          string         `gorm:"not null" json:"text"`
	Options       datatypes.JSON `gorm:"type:jsonb" json:"options,omitempty"`
	CorrectAnswer string         `gorm:"not null" json:"-"`
	Points        int            `gorm:"default:1" json:"points"`
	Position      int            `gorm:"default:0" json:"position"`
}

type QuizAttempt struct {
	TenantModel
	QuizID        string         `gorm:"type:uuid;not null;index:idx_quiz_attempts_user_quiz" json:"quiz_id"`
	UserID        string         `gorm:"type:uuid;not null;index:idx_quiz_attempts_user_quiz" json:"user_id"`
	AttemptNumber int            `gorm:"not null" json:"attempt_number"`
	Score         int            `gorm:"default:0" json:"score"` // percent
	Passed        bool           `gorm:"default:false" json:"passed"`
	Answers       datatypes.JSON `gorm:"type:jsonb" json:"answers,omitempty"`
	TimeTaken     int            `gorm:"default:0" json:"time_taken"` // seconds
}

type Assignment struct {
	TenantModel
	CourseID    string     `gorm:"type:uuid;not null;index" json:"course_id"`
	LessonID    *string    `gorm:"type:uuid;index" json:"lesson_id,omitempty"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	MaxGrade    int        `gorm:"default:100" json:"max_grade"`
	IsPublished bool       `gorm:"default:false" json:"is_published"`
}

type AssignmentSubmission struct {
	TenantModel
	AssignmentID string           `gorm:"type:uuid;not null;index:idx_submissions_user_assignment" json:"assignment_id"`
	UserID       string           `gorm:"type:uuid;not null;index:idx_submissions_user_assignment" json:"user_id"`
	Content      string           `json:"content,omitempty"`
	FileURL      string           `json:"file_url,omitempty"`
	Status       SubmissionStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Grade        *int             `json:"grade,omitempty"`
	Feedback     string           `json:"feedback,omitempty"`
	GradedBy     *string          `gorm:"type:uuid" json:"graded_by,omitempty"`
	GradedAt     *time.Time       `json:"graded_at,omitempty"`
	SubmittedAt  time.Time        `gorm:"default:now()" json:"submitted_at"`
}

// Graded reports whether the submission satisfies a lesson's assignment gate.
func (s *AssignmentSubmission) Graded() bool {
	return s.Status == SubmissionStatusGraded || s.Grade != nil
}
