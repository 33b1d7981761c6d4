package app

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
)

// Registry maps locales to their catalog services.
type Registry struct {
	mu            sync.RWMutex
	services      map[string]*CatalogService
	defaultLocale string
}

// NewRegistry creates an empty registry whose Default is defaultLocale.
func NewRegistry(defaultLocale string) *Registry {
	return &Registry{
		services:      make(map[string]*CatalogService),
		defaultLocale: defaultLocale,
	}
}

// Add registers a catalog service under its locale, replacing any previous
// service for that locale.
func (r *Registry) Add(s *CatalogService) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[s.Locale()] = s
}

// Lookup returns the catalog service for locale.
func (r *Registry) Lookup(locale string) (*CatalogService, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.services[locale]
	return s, ok
}

// Default returns the service of the default locale, or nil.
func (r *Registry) Default() *CatalogService {
	s, _ := r.Lookup(r.defaultLocale)
	return s
}

// DefaultLocale returns the configured default locale.
func (r *Registry) DefaultLocale() string {
	return r.defaultLocale
}

// Locales returns the registered locales in sorted order.
func (r *Registry) Locales() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.services))
}

// Ready reports whether every registered locale has a loaded catalog.
func (r *Registry) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.services) == 0 {
		return false
	}
	for _, s := range r.services {
		if s.Get() == nil {
			return false
		}
	}
	return true
}

// ReloadAll reloads every locale and joins the errors of those that failed.
func (r *Registry) ReloadAll(ctx context.Context) error {
	var errs []error
	for _, locale := range r.Locales() {
		s, _ := r.Lookup(locale)
		if err := s.Reload(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stop stops the watchers of every service.
func (r *Registry) Stop() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.services {
		s.Stop()
	}
}
