package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
)

type fakeSiteRepo struct {
	repositories.SiteRepository
	existing map[string]bool
	created  []*models.Site
}

func (f *fakeSiteRepo) SubdomainExists(_ context.Context, subdomain string) (bool, error) {
	return f.existing[subdomain], nil
}

func (f *fakeSiteRepo) Create(_ context.Context, site *models.Site) error {
	if f.existing[site.Subdomain] {
		return repositories.ErrAlreadyExists
	}
	f.existing[site.Subdomain] = true
	f.created = append(f.created, site)
	return nil
}

type fakeUserRepo struct {
	repositories.UserRepository
	created []*models.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.created = append(f.created, user)
	return nil
}

func newOnboardingFixture(taken ...string) (*OnboardingService, *fakeSiteRepo, *fakeUserRepo) {
	sites := &fakeSiteRepo{existing: make(map[string]bool)}
	for _, sub := range taken {
		sites.existing[sub] = true
	}
	users := &fakeUserRepo{}
	repos := &repositories.Registry{Sites: sites, Users: users}
	return NewOnboardingService(repos, nil), sites, users
}

func TestCheckSubdomain(t *testing.T) {
	svc, _, _ := newOnboardingFixture("taken")
	ctx := context.Background()

	tests := []struct {
		name      string
		candidate string
		available bool
	}{
		{"available", "maria", true},
		{"uppercase normalized", "  MARIA2  ", true},
		{"too short", "ab", false},
		{"bad characters", "my_academy", false},
		{"leading hyphen", "-maria", false},
		{"reserved", "admin", false},
		{"reserved www", "www", false},
		{"already taken", "taken", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check, err := svc.CheckSubdomain(ctx, tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.available, check.Available)
			if !tt.available {
				assert.NotEmpty(t, check.Reason)
			}
		})
	}
}

func TestRegisterTenant(t *testing.T) {
	svc, sites, users := newOnboardingFixture()
	ctx := context.Background()

	res, err := svc.RegisterTenant(ctx, RegisterTenantInput{
		Subdomain:     "Maria",
		SiteName:      "Maria Academy",
		AdminEmail:    "owner@maria.test",
		AdminUsername: "owner",
		AdminPassword: "strong-password",
		FirstName:     "Maria",
	})
	require.NoError(t, err)

	require.Len(t, sites.created, 1)
	assert.Equal(t, "maria", res.Site.Subdomain)
	assert.True(t, res.Site.IsActive)

	require.Len(t, users.created, 1)
	admin := users.created[0]
	assert.Equal(t, res.Site.ID, admin.SiteID)
	assert.Equal(t, models.UserRoleAdmin, admin.Role)
	assert.Equal(t, models.UserStatusActive, admin.Status)
	assert.True(t, admin.EmailVerified)
	assert.NotEqual(t, "strong-password", admin.PasswordHash)
}

func TestRegisterTenantRejectsTakenSubdomain(t *testing.T) {
	svc, _, _ := newOnboardingFixture("maria")

	_, err := svc.RegisterTenant(context.Background(), RegisterTenantInput{
		Subdomain:     "maria",
		SiteName:      "Copycat",
		AdminEmail:    "x@y.test",
		AdminUsername: "x",
		AdminPassword: "strong-password",
	})
	assert.ErrorIs(t, err, appErrors.ErrSubdomainTaken)
}

func TestRegisterTenantRejectsWeakPassword(t *testing.T) {
	svc, _, _ := newOnboardingFixture()

	_, err := svc.RegisterTenant(context.Background(), RegisterTenantInput{
		Subdomain:     "maria",
		SiteName:      "Maria Academy",
		AdminEmail:    "x@y.test",
		AdminUsername: "x",
		AdminPassword: "short",
	})
	assert.ErrorIs(t, err, appErrors.ErrWeakPassword)
}
