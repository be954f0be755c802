// Package seed bootstraps the records a fresh deployment needs.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/wardenhq/warden/internal/config"
	tenantdomain "github.com/wardenhq/warden/internal/tenant/domain"
	"github.com/wardenhq/warden/pkg/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsureDefaultTenant seeds the platform's own tenant so the reserved host
// always resolves.
func EnsureDefaultTenant(conn *gorm.DB, cfg config.Config) error {
	if conn == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	defaultSlug := slug.Make(cfg.Tenancy.DefaultTenantSlug)
	ctx := context.Background()

	err = conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing tenantdomain.Tenant
		err := tx.Where("slug = ?", defaultSlug).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		return tx.Create(&tenantdomain.Tenant{
			ID:           node.Generate(),
			Name:         cfg.AppName,
			Slug:         defaultSlug,
			Subdomain:    cfg.Tenancy.ReservedLabel,
			IsActive:     true,
			Branding:     datatypes.JSONMap{},
			RoleMappings: datatypes.JSONMap{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}).Error
	})
	// Another replica seeding concurrently is not an error.
	if db.IsDuplicateKeyErr(err) {
		return nil
	}
	return err
}
