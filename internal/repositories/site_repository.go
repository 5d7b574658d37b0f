package repositories

import (
	"context"

	"gorm.io/gorm"

	"academy_backend/internal/models"
)

type SiteRepository interface {
	Create(ctx context.Context, site *models.Site) error
	Update(ctx context.Context, site *models.Site) error
	FindByID(ctx context.Context, id string) (*models.Site, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*models.Site, error)
	FindByCustomDomain(ctx context.Context, domain string) (*models.Site, error)
	SubdomainExists(ctx context.Context, subdomain string) (bool, error)
	// FindRoot returns the platform-root tenant: subdomain "admin" when
	// present, otherwise the oldest site.
	FindRoot(ctx context.Context, rootSubdomain string) (*models.Site, error)
	FindAll(ctx context.Context, limit, offset int) ([]models.Site, int64, error)
}

type siteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) SiteRepository {
	return &siteRepository{db: db}
}

func (r *siteRepository) Create(ctx context.Context, site *models.Site) error {
	return translate(r.db.WithContext(ctx).Create(site).Error)
}

func (r *siteRepository) Update(ctx context.Context, site *models.Site) error {
	return translate(r.db.WithContext(ctx).Save(site).Error)
}

func (r *siteRepository) FindByID(ctx context.Context, id string) (*models.Site, error) {
	var site models.Site
	err := r.db.WithContext(ctx).First(&site, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &site, nil
}

func (r *siteRepository) FindBySubdomain(ctx context.Context, subdomain string) (*models.Site, error) {
	var site models.Site
	err := r.db.WithContext(ctx).
		First(&site, "subdomain = ? AND is_active = true", subdomain).Error
	if err != nil {
		return nil, translate(err)
	}
	return &site, nil
}

func (r *siteRepository) FindByCustomDomain(ctx context.Context, domain string) (*models.Site, error) {
	var site models.Site
	err := r.db.WithContext(ctx).
		First(&site, "custom_domain = ? AND is_active = true", domain).Error
	if err != nil {
		return nil, translate(err)
	}
	return &site, nil
}

func (r *siteRepository) SubdomainExists(ctx context.Context, subdomain string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Site{}).
		Where("subdomain = ?", subdomain).Count(&count).Error
	return count > 0, err
}

func (r *siteRepository) FindRoot(ctx context.Context, rootSubdomain string) (*models.Site, error) {
	var site models.Site
	err := r.db.WithContext(ctx).First(&site, "subdomain = ?", rootSubdomain).Error
	if err == nil {
		return &site, nil
	}
	err = r.db.WithContext(ctx).Order("created_at ASC").First(&site).Error
	if err != nil {
		return nil, translate(err)
	}
	return &site, nil
}

func (r *siteRepository) FindAll(ctx context.Context, limit, offset int) ([]models.Site, int64, error) {
	var sites []models.Site
	var total int64
	db := r.db.WithContext(ctx).Model(&models.Site{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("created_at ASC").Limit(limit).Offset(offset).Find(&sites).Error
	return sites, total, err
}
