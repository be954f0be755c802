package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wardenhq/warden/internal/tenant/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository returns the gorm-backed tenant store.
func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	return r.findOne(ctx, "slug = ?", normalizeKey(slug))
}

func (r *repository) FindBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	return r.findOne(ctx, "subdomain = ?", normalizeKey(subdomain))
}

func (r *repository) FindByCustomDomain(ctx context.Context, customDomain string) (*domain.Tenant, error) {
	return r.findOne(ctx, "custom_domain = ?", normalizeKey(customDomain))
}

func (r *repository) FirstActive(ctx context.Context) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		First(&tenant).Error
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return &tenant, nil
}

func (r *repository) findOne(ctx context.Context, cond string, value string) (*domain.Tenant, error) {
	if value == "" {
		return nil, domain.ErrTenantNotFound
	}

	var tenant domain.Tenant
	err := r.db.WithContext(ctx).
		Where(cond, value).
		Where("is_active = ?", true).
		First(&tenant).Error
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return &tenant, nil
}

func mapLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrTenantNotFound
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
