// Package tenant maps request hosts to Site rows and exposes typed access
// to a tenant's schemaless theme_config.
package tenant

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/models"
)

// SiteSource is the slice of the site repository the resolver needs.
type SiteSource interface {
	FindBySubdomain(ctx context.Context, subdomain string) (*models.Site, error)
	FindByCustomDomain(ctx context.Context, domain string) (*models.Site, error)
}

type cacheEntry struct {
	site      *models.Site
	expiresAt time.Time
}

// Resolver resolves a host header to a Site. Hits are cached for a short
// TTL; invalidation on admin updates is best-effort.
type Resolver struct {
	sites      SiteSource
	baseDomain string
	ttl        time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
	now   func() time.Time
}

func NewResolver(sites SiteSource, baseDomain string, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Resolver{
		sites:      sites,
		baseDomain: strings.ToLower(baseDomain),
		ttl:        ttl,
		cache:      make(map[string]cacheEntry),
		now:        time.Now,
	}
}

// Resolve maps a host (port stripped) to its Site: subdomain match first,
// custom domain second. Misses fail with ErrSiteNotFound.
func (r *Resolver) Resolve(ctx context.Context, host string) (*models.Site, error) {
	host = NormalizeHost(host)
	if host == "" {
		return nil, appErrors.ErrSiteNotFound
	}

	if site := r.cached(host); site != nil {
		return site, nil
	}

	site, err := r.lookup(ctx, host)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[host] = cacheEntry{site: site, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return site, nil
}

func (r *Resolver) lookup(ctx context.Context, host string) (*models.Site, error) {
	// "maria.academy.example.com" yields subdomain "maria" when the base domain
	// is configured; a bare label is treated as the subdomain itself.
	if sub := r.subdomainOf(host); sub != "" {
		if site, err := r.sites.FindBySubdomain(ctx, sub); err == nil {
			return site, nil
		}
	}
	if site, err := r.sites.FindByCustomDomain(ctx, host); err == nil {
		return site, nil
	}
	return nil, appErrors.ErrSiteNotFound
}

func (r *Resolver) subdomainOf(host string) string {
	if r.baseDomain != "" && strings.HasSuffix(host, "."+r.baseDomain) {
		return strings.TrimSuffix(host, "."+r.baseDomain)
	}
	if !strings.Contains(host, ".") {
		return host
	}
	// Fall back to the first label for unknown domains; the custom-domain
	// lookup covers the rest.
	return strings.SplitN(host, ".", 2)[0]
}

func (r *Resolver) cached(host string) *models.Site {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.cache[host]
	if !ok || r.now().After(e.expiresAt) {
		return nil
	}
	return e.site
}

// Invalidate drops a host from the cache after an admin site update.
func (r *Resolver) Invalidate(host string) {
	host = NormalizeHost(host)
	r.mu.Lock()
	delete(r.cache, host)
	r.mu.Unlock()
}

// InvalidateAll empties the cache.
func (r *Resolver) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[string]cacheEntry)
	r.mu.Unlock()
}

// NormalizeHost lowercases a host header and strips any port.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
