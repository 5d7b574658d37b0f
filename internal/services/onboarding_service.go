package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/auth"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
	"academy_backend/internal/tenant"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// OnboardingService creates new tenants: subdomain availability checks
// and the site + first-admin bootstrap.
type OnboardingService struct {
	repos    *repositories.Registry
	resolver *tenant.Resolver
}

func NewOnboardingService(repos *repositories.Registry, resolver *tenant.Resolver) *OnboardingService {
	return &OnboardingService{repos: repos, resolver: resolver}
}

// SubdomainCheck is the availability verdict for one candidate.
type SubdomainCheck struct {
	Subdomain string `json:"subdomain"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

func (s *OnboardingService) CheckSubdomain(ctx context.Context, candidate string) (*SubdomainCheck, error) {
	sub := strings.ToLower(strings.TrimSpace(candidate))
	check := &SubdomainCheck{Subdomain: sub}

	switch {
	case len(sub) < 3:
		check.Reason = "Subdomain must be at least 3 characters"
	case len(sub) > 63:
		check.Reason = "Subdomain must be at most 63 characters"
	case !subdomainPattern.MatchString(sub):
		check.Reason = "Subdomain may contain lowercase letters, digits and hyphens"
	case models.ReservedSubdomains[sub]:
		check.Reason = "Subdomain is reserved"
	}
	if check.Reason != "" {
		return check, nil
	}

	taken, err := s.repos.Sites.SubdomainExists(ctx, sub)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	if taken {
		check.Reason = "Subdomain is already taken"
		return check, nil
	}

	check.Available = true
	return check, nil
}

// RegisterTenantInput bootstraps a site with its first admin account.
type RegisterTenantInput struct {
	Subdomain     string
	SiteName      string
	AdminEmail    string
	AdminUsername string
	AdminPassword string
	FirstName     string
	LastName      string
}

type RegisterTenantResult struct {
	Site  *models.Site `json:"site"`
	Admin *models.User `json:"admin"`
}

func (s *OnboardingService) RegisterTenant(ctx context.Context, input RegisterTenantInput) (*RegisterTenantResult, error) {
	check, err := s.CheckSubdomain(ctx, input.Subdomain)
	if err != nil {
		return nil, err
	}
	if !check.Available {
		return nil, appErrors.ErrSubdomainTaken.WithMessage(check.Reason)
	}
	if err := auth.ValidatePassword(input.AdminPassword); err != nil {
		return nil, appErrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(input.AdminPassword)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	site := &models.Site{
		Subdomain: check.Subdomain,
		Name:      input.SiteName,
		IsActive:  true,
	}
	site.ID = uuid.NewString()

	// The tenant's first admin skips verification; they just proved
	// control of the registration flow.
	admin := &models.User{
		Email:         input.AdminEmail,
		Username:      input.AdminUsername,
		PasswordHash:  hash,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Role:          models.UserRoleAdmin,
		Status:        models.UserStatusActive,
		EmailVerified: true,
	}
	admin.ID = uuid.NewString()
	admin.SiteID = site.ID

	err = s.repos.Atomic(func(r *repositories.Registry) error {
		if err := r.Sites.Create(ctx, site); err != nil {
			if appErrors.Is(err, repositories.ErrAlreadyExists) {
				return appErrors.ErrSubdomainTaken
			}
			return appErrors.InternalError(err)
		}
		if err := r.Users.Create(ctx, admin); err != nil {
			return appErrors.InternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.resolver != nil {
		s.resolver.InvalidateAll()
	}
	return &RegisterTenantResult{Site: site, Admin: admin}, nil
}
