package services

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/logger"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
)

// AuditService records admin mutations. Writes are best-effort: an audit
// failure is logged and never fails the action it describes.
type AuditService struct {
	repos *repositories.Registry
}

func NewAuditService(repos *repositories.Registry) *AuditService {
	return &AuditService{repos: repos}
}

func (s *AuditService) Record(ctx context.Context, site *models.Site, actorID, action, targetType, targetID string, metadata map[string]interface{}) {
	entry := &models.AdminAuditLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
	}
	entry.SiteID = site.ID
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			entry.Metadata = datatypes.JSON(raw)
		}
	}
	if err := s.repos.Audit.Append(ctx, entry); err != nil {
		logger.Warn("Failed to append audit log entry",
			"action", action,
			"target_type", targetType,
			"error", err,
		)
	}
}

func (s *AuditService) List(ctx context.Context, site *models.Site, page, size int) ([]models.AdminAuditLog, int64, error) {
	items, total, err := s.repos.Audit.FindBySite(ctx, site.ID, page, size)
	if err != nil {
		return nil, 0, appErrors.InternalError(err)
	}
	return items, total, nil
}
