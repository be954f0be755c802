package tenant

import (
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/metrics"
	"github.com/wardenhq/warden/internal/tenant/directory"
	"github.com/wardenhq/warden/internal/tenant/domain"
	"github.com/wardenhq/warden/internal/tenant/repository"
	"github.com/wardenhq/warden/internal/tenant/resolver"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires the tenant store, directory client and resolver.
var Module = fx.Module("tenant",
	fx.Provide(
		repository.NewRepository,
		directory.New,
		newResolver,
	),
)

func newResolver(cfg config.Config, repo domain.Repository, dir domain.Directory, log *zap.Logger, m *metrics.Metrics) domain.Resolver {
	return resolver.New(resolver.OptionsFromConfig(cfg), repo, dir, log, m)
}
