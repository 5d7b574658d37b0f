package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
)

type fakeCertificateRepo struct {
	repositories.CertificateRepository
	certs []*models.Certificate
}

func (f *fakeCertificateRepo) Find(_ context.Context, siteID, id string) (*models.Certificate, error) {
	for _, cert := range f.certs {
		if cert.SiteID == siteID && cert.ID == id {
			return cert, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func newVerifyFixture() (*CertificateService, *models.Site) {
	issued := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cert := &models.Certificate{
		UserID:   "user-1",
		CourseID: "course-1",
		Status:   models.CertificateStatusIssued,
		IssuedAt: &issued,
	}
	cert.ID = "cert-1"
	cert.SiteID = "site-1"

	course := &models.Course{Title: "Go Basics", IsPublished: true}
	course.ID = "course-1"
	course.SiteID = "site-1"

	repos := &repositories.Registry{
		Users:        &fakeUserLookupRepo{},
		Courses:      &fakeCourseRepo{course: course},
		Certificates: &fakeCertificateRepo{certs: []*models.Certificate{cert}},
	}

	site := &models.Site{Subdomain: "maria", Name: "Maria Academy", IsActive: true}
	site.ID = "site-1"
	return NewCertificateService(repos, nil, nil, nil, nil), site
}

func TestVerifyScopedToTenant(t *testing.T) {
	ctx := context.Background()
	svc, site := newVerifyFixture()

	result, err := svc.Verify(ctx, site, "cert-1")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "Go Basics", result.CourseTitle)
	require.NotNil(t, result.IssuedAt)

	// The same id queried through another tenant must not resolve.
	other := &models.Site{Subdomain: "rival", Name: "Rival Academy", IsActive: true}
	other.ID = "site-2"
	result, err = svc.Verify(ctx, other, "cert-1")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Empty(t, result.CourseTitle)
}

func TestVerifyUnknownCertificate(t *testing.T) {
	ctx := context.Background()
	svc, site := newVerifyFixture()

	result, err := svc.Verify(ctx, site, "nope")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.False(t, result.BlockchainVerified)
}
