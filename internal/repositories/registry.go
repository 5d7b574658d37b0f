package repositories

import (
	"gorm.io/gorm"
)

// Registry bundles every repository over one *gorm.DB. Atomic runs a
// closure against a transaction-bound copy so multi-table writes (progress
// roll-up, token awards, transfers) commit or roll back together.
//
// Tests build a Registry by hand with fake repositories and a nil db;
// Atomic then degrades to a direct call.
type Registry struct {
	db *gorm.DB

	Sites         SiteRepository
	Users         UserRepository
	Courses       CourseRepository
	Enrollments   EnrollmentRepository
	Progress      ProgressRepository
	Quizzes       QuizRepository
	Assignments   AssignmentRepository
	Tokens        TokenRepository
	Certificates  CertificateRepository
	Notifications NotificationRepository
	Audit         AuditRepository
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{
		db:            db,
		Sites:         NewSiteRepository(db),
		Users:         NewUserRepository(db),
		Courses:       NewCourseRepository(db),
		Enrollments:   NewEnrollmentRepository(db),
		Progress:      NewProgressRepository(db),
		Quizzes:       NewQuizRepository(db),
		Assignments:   NewAssignmentRepository(db),
		Tokens:        NewTokenRepository(db),
		Certificates:  NewCertificateRepository(db),
		Notifications: NewNotificationRepository(db),
		Audit:         NewAuditRepository(db),
	}
}

// Atomic executes fn inside a database transaction. Nested calls reuse the
// surrounding transaction because gorm's Transaction handles that via
// savepoints.
func (r *Registry) Atomic(fn func(*Registry) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRegistry(tx))
	})
}

// DB exposes the underlying handle for health checks and migrations.
func (r *Registry) DB() *gorm.DB {
	return r.db
}
