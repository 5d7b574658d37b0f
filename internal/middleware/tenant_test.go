package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/models"
	"academy_backend/internal/tenant"
)

type staticSites struct {
	sites map[string]*models.Site
}

func (s *staticSites) FindBySubdomain(_ context.Context, subdomain string) (*models.Site, error) {
	if site, ok := s.sites[subdomain]; ok {
		return site, nil
	}
	return nil, appErrors.ErrSiteNotFound
}

func (s *staticSites) FindByCustomDomain(_ context.Context, _ string) (*models.Site, error) {
	return nil, appErrors.ErrSiteNotFound
}

func tenantEngine(sites map[string]*models.Site) *gin.Engine {
	gin.SetMode(gin.TestMode)
	resolver := tenant.NewResolver(&staticSites{sites: sites}, "academy.test", time.Second)
	r := gin.New()
	r.Use(TenantMiddleware(resolver))
	r.GET("/ping", func(c *gin.Context) {
		site := SiteFromContext(c)
		c.JSON(http.StatusOK, gin.H{"site_id": site.ID})
	})
	return r
}

func activeSite(id, subdomain string) *models.Site {
	site := &models.Site{Subdomain: subdomain, Name: subdomain, IsActive: true}
	site.ID = id
	return site
}

func TestTenantMiddlewareResolvesHost(t *testing.T) {
	r := tenantEngine(map[string]*models.Site{"maria": activeSite("s1", "maria")})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Host = "maria.academy.test"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "s1")
}

func TestTenantMiddlewareHeaderOverridesHost(t *testing.T) {
	r := tenantEngine(map[string]*models.Site{"maria": activeSite("s1", "maria")})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Host = "unknown.academy.test"
	req.Header.Set("X-Tenant-Domain", "maria.academy.test")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTenantMiddlewareUnknownHost(t *testing.T) {
	r := tenantEngine(map[string]*models.Site{})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Host = "ghost.academy.test"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTenantMiddlewareInactiveSite(t *testing.T) {
	site := activeSite("s1", "maria")
	site.IsActive = false
	r := tenantEngine(map[string]*models.Site{"maria": site})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Host = "maria.academy.test"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func maintenanceEngine(site *models.Site, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextSite, site)
		if user != nil {
			c.Set(ContextUser, user)
		}
	})
	r.Use(MaintenanceGate(nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestMaintenanceGateBlocksStudents(t *testing.T) {
	site := activeSite("s1", "maria")
	site.ThemeConfig = datatypes.JSONMap{"maintenance_mode": true}
	student := &models.User{Role: models.UserRoleStudent}

	rec := httptest.NewRecorder()
	maintenanceEngine(site, student).ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMaintenanceGateAdmitsAdmins(t *testing.T) {
	site := activeSite("s1", "maria")
	site.ThemeConfig = datatypes.JSONMap{"maintenance_mode": true}
	admin := &models.User{Role: models.UserRoleAdmin}

	rec := httptest.NewRecorder()
	maintenanceEngine(site, admin).ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMaintenanceGateOpenByDefault(t *testing.T) {
	site := activeSite("s1", "maria")

	rec := httptest.NewRecorder()
	maintenanceEngine(site, nil).ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
