package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/models"
)

type fakeSiteSource struct {
	bySubdomain map[string]*models.Site
	byDomain    map[string]*models.Site
	lookups     int
}

func (f *fakeSiteSource) FindBySubdomain(_ context.Context, subdomain string) (*models.Site, error) {
	f.lookups++
	if site, ok := f.bySubdomain[subdomain]; ok {
		return site, nil
	}
	return nil, appErrors.ErrSiteNotFound
}

func (f *fakeSiteSource) FindByCustomDomain(_ context.Context, domain string) (*models.Site, error) {
	f.lookups++
	if site, ok := f.byDomain[domain]; ok {
		return site, nil
	}
	return nil, appErrors.ErrSiteNotFound
}

func siteFixture(id, subdomain string) *models.Site {
	site := &models.Site{Subdomain: subdomain, Name: subdomain, IsActive: true}
	site.ID = id
	return site
}

func newTestResolver(src SiteSource) (*Resolver, *time.Time) {
	r := NewResolver(src, "academy.test", 30*time.Second)
	now := time.Now()
	r.now = func() time.Time { return now }
	return r, &now
}

func TestResolveSubdomain(t *testing.T) {
	src := &fakeSiteSource{bySubdomain: map[string]*models.Site{
		"maria": siteFixture("s1", "maria"),
	}}
	r, _ := newTestResolver(src)

	site, err := r.Resolve(context.Background(), "maria.academy.test")
	require.NoError(t, err)
	assert.Equal(t, "s1", site.ID)
}

func TestResolveStripsPortAndCase(t *testing.T) {
	src := &fakeSiteSource{bySubdomain: map[string]*models.Site{
		"maria": siteFixture("s1", "maria"),
	}}
	r, _ := newTestResolver(src)

	site, err := r.Resolve(context.Background(), "Maria.Academy.Test:8000")
	require.NoError(t, err)
	assert.Equal(t, "s1", site.ID)
}

func TestResolveCustomDomain(t *testing.T) {
	src := &fakeSiteSource{byDomain: map[string]*models.Site{
		"learn.example.org": siteFixture("s2", "learn"),
	}}
	r, _ := newTestResolver(src)

	site, err := r.Resolve(context.Background(), "learn.example.org")
	require.NoError(t, err)
	assert.Equal(t, "s2", site.ID)
}

func TestResolveBareLabel(t *testing.T) {
	src := &fakeSiteSource{bySubdomain: map[string]*models.Site{
		"maria": siteFixture("s1", "maria"),
	}}
	r, _ := newTestResolver(src)

	site, err := r.Resolve(context.Background(), "maria")
	require.NoError(t, err)
	assert.Equal(t, "s1", site.ID)
}

func TestResolveMiss(t *testing.T) {
	r, _ := newTestResolver(&fakeSiteSource{})
	_, err := r.Resolve(context.Background(), "ghost.academy.test")
	assert.ErrorIs(t, err, appErrors.ErrSiteNotFound)
}

func TestResolveCachesHits(t *testing.T) {
	src := &fakeSiteSource{bySubdomain: map[string]*models.Site{
		"maria": siteFixture("s1", "maria"),
	}}
	r, now := newTestResolver(src)

	_, err := r.Resolve(context.Background(), "maria.academy.test")
	require.NoError(t, err)
	lookupsAfterFirst := src.lookups

	_, err = r.Resolve(context.Background(), "maria.academy.test")
	require.NoError(t, err)
	assert.Equal(t, lookupsAfterFirst, src.lookups)

	*now = now.Add(time.Minute)
	_, err = r.Resolve(context.Background(), "maria.academy.test")
	require.NoError(t, err)
	assert.Greater(t, src.lookups, lookupsAfterFirst)
}

func TestInvalidateAllDropsCache(t *testing.T) {
	src := &fakeSiteSource{bySubdomain: map[string]*models.Site{
		"maria": siteFixture("s1", "maria"),
	}}
	r, _ := newTestResolver(src)

	_, err := r.Resolve(context.Background(), "maria.academy.test")
	require.NoError(t, err)
	before := src.lookups

	r.InvalidateAll()
	_, err = r.Resolve(context.Background(), "maria.academy.test")
	require.NoError(t, err)
	assert.Greater(t, src.lookups, before)
}

func TestNormalizeHost(t *testing.T) {
	assert.Equal(t, "maria.academy.test", NormalizeHost(" Maria.Academy.Test:443 "))
	assert.Equal(t, "localhost", NormalizeHost("localhost:8000"))
	assert.Equal(t, "example.com", NormalizeHost("example.com"))
}
