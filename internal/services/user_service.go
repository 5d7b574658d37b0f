package services

import (
	"context"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
)

// UserService covers profile reads/updates and the admin user management
// surface.
type UserService struct {
	repos *repositories.Registry
}

func NewUserService(repos *repositories.Registry) *UserService {
	return &UserService{repos: repos}
}

// Get returns an in-tenant user; a cross-tenant id is an opaque 404.
func (s *UserService) Get(ctx context.Context, site *models.Site, userID string) (*models.User, error) {
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil || user.SiteID != site.ID {
		return nil, appErrors.ErrUserNotFound
	}
	return user, nil
}

type ProfileUpdate struct {
	FirstName *string
	LastName  *string
}

func (s *UserService) UpdateProfile(ctx context.Context, site *models.Site, userID string, upd ProfileUpdate) (*models.User, error) {
	user, err := s.Get(ctx, site, userID)
	if err != nil {
		return nil, err
	}
	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, site *models.Site, filter repositories.UserFilter) ([]models.User, int64, error) {
	items, total, err := s.repos.Users.FindWithFilter(ctx, site.ID, filter)
	if err != nil {
		return nil, 0, appErrors.InternalError(err)
	}
	return items, total, nil
}

func (s *UserService) UpdateRole(ctx context.Context, site *models.Site, userID string, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, appErrors.ErrInvalidUserRole
	}
	user, err := s.Get(ctx, site, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return user, nil
}

func (s *UserService) UpdateStatus(ctx context.Context, site *models.Site, userID string, status models.UserStatus) (*models.User, error) {
	switch status {
	case models.UserStatusActive, models.UserStatusInactive, models.UserStatusSuspended:
	default:
		return nil, appErrors.ValidationError("Invalid user status")
	}
	user, err := s.Get(ctx, site, userID)
	if err != nil {
		return nil, err
	}
	user.Status = status
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return user, nil
}

// Delete soft-deletes: the row stays but disappears from normal queries.
func (s *UserService) Delete(ctx context.Context, site *models.Site, userID string) error {
	if _, err := s.Get(ctx, site, userID); err != nil {
		return err
	}
	if err := s.repos.Users.SoftDelete(ctx, site.ID, userID); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}
