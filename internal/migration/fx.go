package migration

import (
	"github.com/wardenhq/warden/internal/config"
	reportdomain "github.com/wardenhq/warden/internal/report/domain"
	"github.com/wardenhq/warden/internal/seed"
	tenantdomain "github.com/wardenhq/warden/internal/tenant/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module applies the schema on startup and seeds the default tenant.
// SQL migrations cover postgres; other dialects (local sqlite dev) fall
// back to AutoMigrate.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := conn.AutoMigrate(&tenantdomain.Tenant{}, &reportdomain.Report{}); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultTenant(conn, cfg)
	}),
)
