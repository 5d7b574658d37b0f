package services

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/logger"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
	"academy_backend/internal/tasks"
)

// Notification types stored on the in-app feed.
const (
	NotificationLessonCompleted   = "lesson_completed"
	NotificationCourseCompleted   = "course_completed"
	NotificationCertificateIssued = "certificate_issued"
	NotificationTokensReceived    = "tokens_received"
	NotificationAssignmentGraded  = "assignment_graded"
)

// NotificationService fans events out to the in-app feed and the email
// queue. Both paths honor per-user preferences and are best-effort: a
// delivery failure never fails the triggering request.
type NotificationService struct {
	repos *repositories.Registry
	queue tasks.Queue
}

func NewNotificationService(repos *repositories.Registry, queue tasks.Queue) *NotificationService {
	return &NotificationService{repos: repos, queue: queue}
}

// NotifyInApp inserts a feed row unless the user disabled in-app delivery.
func (s *NotificationService) NotifyInApp(ctx context.Context, site *models.Site, userID, ntype, title, message string, data map[string]interface{}) {
	prefs := s.preferences(ctx, site.ID, userID)
	if !prefs.InAppEnabled {
		return
	}

	n := &models.Notification{
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
	}
	n.SiteID = site.ID
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			n.Data = datatypes.JSON(raw)
		}
	}
	if err := s.repos.Notifications.Create(ctx, n); err != nil {
		logger.Warn("Failed to create in-app notification",
			"user_id", userID,
			"type", ntype,
			"error", err,
		)
	}
}

// SendEmail queues a templated email for the user unless they disabled
// email delivery. Enqueue failure is logged, not returned.
func (s *NotificationService) SendEmail(ctx context.Context, site *models.Site, user *models.User, subject, template string, emailCtx map[string]interface{}) {
	prefs := s.preferences(ctx, site.ID, user.ID)
	if !prefs.EmailEnabled {
		return
	}

	task, err := tasks.NewEmailTask(tasks.EmailPayload{
		SiteID:   site.ID,
		To:       user.Email,
		ToName:   user.FullName(),
		Subject:  subject,
		Template: template,
		Context:  emailCtx,
	})
	if err != nil {
		logger.Warn("Failed to build email task", "error", err)
		return
	}
	if s.queue == nil {
		logger.Warn("Email task dropped: no queue configured", "template", template)
		return
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		logger.Warn("Failed to enqueue email task",
			"template", template,
			"error", err,
		)
	}
}

func (s *NotificationService) List(ctx context.Context, site *models.Site, userID string, unreadOnly bool, page, size int) ([]models.Notification, int64, error) {
	items, total, err := s.repos.Notifications.FindByUser(ctx, site.ID, userID, unreadOnly, page, size)
	if err != nil {
		return nil, 0, appErrors.InternalError(err)
	}
	return items, total, nil
}

func (s *NotificationService) CountUnread(ctx context.Context, site *models.Site, userID string) (int64, error) {
	count, err := s.repos.Notifications.CountUnread(ctx, site.ID, userID)
	if err != nil {
		return 0, appErrors.InternalError(err)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, site *models.Site, userID, notificationID string) error {
	err := s.repos.Notifications.MarkRead(ctx, site.ID, userID, notificationID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return appErrors.NotFound("Notification")
	}
	if err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, site *models.Site, userID string) (int64, error) {
	updated, err := s.repos.Notifications.MarkAllRead(ctx, site.ID, userID)
	if err != nil {
		return 0, appErrors.InternalError(err)
	}
	return updated, nil
}

func (s *NotificationService) GetSettings(ctx context.Context, site *models.Site, userID string) (*models.NotificationSettings, error) {
	settings, err := s.repos.Notifications.FindSettings(ctx, site.ID, userID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		defaults := defaultNotificationSettings(site.ID, userID)
		return &defaults, nil
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return settings, nil
}

func (s *NotificationService) UpdateSettings(ctx context.Context, site *models.Site, userID string, update models.NotificationSettings) (*models.NotificationSettings, error) {
	settings, err := s.repos.Notifications.FindSettings(ctx, site.ID, userID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		defaults := defaultNotificationSettings(site.ID, userID)
		settings = &defaults
	} else if err != nil {
		return nil, appErrors.InternalError(err)
	}

	settings.EmailEnabled = update.EmailEnabled
	settings.InAppEnabled = update.InAppEnabled
	settings.CourseUpdates = update.CourseUpdates
	settings.ProgressMilestones = update.ProgressMilestones
	if err := s.repos.Notifications.SaveSettings(ctx, settings); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return settings, nil
}

// preferences loads the user's settings, falling back to all-enabled
// defaults when no row exists or the read fails.
func (s *NotificationService) preferences(ctx context.Context, siteID, userID string) models.NotificationSettings {
	settings, err := s.repos.Notifications.FindSettings(ctx, siteID, userID)
	if err != nil || settings == nil {
		return defaultNotificationSettings(siteID, userID)
	}
	return *settings
}

func defaultNotificationSettings(siteID, userID string) models.NotificationSettings {
	settings := models.NotificationSettings{
		UserID:             userID,
		EmailEnabled:       true,
		InAppEnabled:       true,
		CourseUpdates:      true,
		ProgressMilestones: true,
	}
	settings.SiteID = siteID
	return settings
}
