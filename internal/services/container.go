package services

import (
	"academy_backend/internal/auth"
	"academy_backend/internal/blockchain"
	"academy_backend/internal/pdf"
	"academy_backend/internal/repositories"
	"academy_backend/internal/sessions"
	"academy_backend/internal/storage"
	"academy_backend/internal/tasks"
	"academy_backend/internal/tenant"
	"academy_backend/internal/vault"
)

// Deps is everything the service layer consumes from the outside world.
// All of it is injected so tests can swap in fakes.
type Deps struct {
	Repos      *repositories.Registry
	JWT        *auth.JWTManager
	Sessions   sessions.Store
	Queue      tasks.Queue
	Cipher     *vault.Cipher
	Storage    storage.Storage
	Renderer   pdf.Renderer
	Minter     blockchain.Minter
	Resolver   *tenant.Resolver
	BaseDomain string
}

// Container wires the services in dependency order and is handed to the
// HTTP handlers.
type Container struct {
	Auth          *AuthService
	Users         *UserService
	Tokens        *TokenService
	Progress      *ProgressService
	Quizzes       *QuizService
	Assignments   *AssignmentService
	Certificates  *CertificateService
	Notifications *NotificationService
	Enrollments   *EnrollmentService
	Courses       *CourseService
	Onboarding    *OnboardingService
	Audit         *AuditService
}

func NewContainer(d Deps) *Container {
	notifications := NewNotificationService(d.Repos, d.Queue)
	tokens := NewTokenService(d.Repos, d.Cipher)
	certificates := NewCertificateService(d.Repos, d.Renderer, d.Storage, d.Minter, notifications)
	progress := NewProgressService(d.Repos, tokens, certificates, notifications, d.Cipher)

	return &Container{
		Auth:          NewAuthService(d.Repos, d.JWT, d.Sessions, tokens, notifications, d.Cipher, d.BaseDomain),
		Users:         NewUserService(d.Repos),
		Tokens:        tokens,
		Progress:      progress,
		Quizzes:       NewQuizService(d.Repos, tokens, progress, d.Cipher),
		Assignments:   NewAssignmentService(d.Repos, progress, notifications),
		Certificates:  certificates,
		Notifications: notifications,
		Enrollments:   NewEnrollmentService(d.Repos),
		Courses:       NewCourseService(d.Repos, progress),
		Onboarding:    NewOnboardingService(d.Repos, d.Resolver),
		Audit:         NewAuditService(d.Repos),
	}
}
