package report

import (
	"github.com/bwmarrin/snowflake"
	"github.com/wardenhq/warden/internal/clock"
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/metrics"
	"github.com/wardenhq/warden/internal/report/domain"
	"github.com/wardenhq/warden/internal/report/repository"
	"github.com/wardenhq/warden/internal/report/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires the report repository and submission service.
var Module = fx.Module("report",
	fx.Provide(
		repository.NewRepository,
		newService,
	),
)

func newService(
	repo domain.Repository,
	genID *snowflake.Node,
	clk clock.Clock,
	log *zap.Logger,
	m *metrics.Metrics,
	cfg config.Config,
) domain.Service {
	return service.NewService(repo, genID, clk, log, m, cfg.RateLimit.SubmitLimit, cfg.RateLimit.SubmitWindow)
}
