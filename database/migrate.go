// Package database owns the GORM connection and schema migration.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"academy_backend/internal/logger"
	"academy_backend/internal/models"
)

// Connect opens the postgres connection and verifies it with a ping.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates the schema for every model, then applies
// the composite unique indexes GORM tags cannot express across the tenant
// column.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		logger.Warn("uuid-ossp extension unavailable, relying on application-side IDs", "error", err)
	}

	err := db.AutoMigrate(
		&models.Site{},
		&models.User{},
		&models.EmailVerificationToken{},
		&models.PasswordResetToken{},
		&models.Category{},
		&models.Course{},
		&models.Section{},
		&models.Lesson{},
		&models.Cohort{},
		&models.Enrollment{},
		&models.LessonProgress{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAttempt{},
		&models.Assignment{},
		&models.AssignmentSubmission{},
		&models.TokenBalance{},
		&models.TokenTransaction{},
		&models.Certificate{},
		&models.Notification{},
		&models.NotificationSettings{},
		&models.AdminAuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := applyConstraints(db); err != nil {
		return err
	}
	logger.Info("database migration completed")
	return nil
}

// applyConstraints adds the uniqueness guarantees the domain depends on.
// Email and username are unique per tenant, not globally; the transaction
// reference triple is the idempotency key for token awards; the partial
// predicate keeps transfers and legacy rows without references out of it.
func applyConstraints(db *gorm.DB) error {
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_site_email
			ON users (site_id, email) WHERE status <> 'deleted'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_site_username
			ON users (site_id, username) WHERE status <> 'deleted'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_token_balances_site_user
			ON token_balances (site_id, user_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_token_transactions_reference
			ON token_transactions (user_id, reference_type, reference_id)
			WHERE reference_type <> '' AND reference_id <> ''`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_lesson_progress_user_lesson
			ON lesson_progresses (user_id, lesson_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_enrollments_user_course
			ON enrollments (user_id, course_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_certificates_user_course
			ON certificates (user_id, course_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_notification_settings_user
			ON notification_settings (user_id)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply constraint: %w", err)
		}
	}
	return nil
}
