package ratelimit

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/wardenhq/warden/internal/clock"
	"github.com/wardenhq/warden/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires the fixed-window limiter and its store.
var Module = fx.Module("ratelimit",
	fx.Provide(
		NewStore,
		NewLimiter,
	),
)

// NewStore picks the redis store when an address is configured, otherwise
// the in-memory store with its periodic sweep tied to the app lifecycle.
func NewStore(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, log *zap.Logger) Store {
	if addr := cfg.RateLimit.RedisAddr; addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
		})
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		log.Info("rate limiter using redis store", zap.String("addr", addr))
		return NewRedisStore(client)
	}

	store := NewMemoryStore(clk)
	stop := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go store.Run(cfg.RateLimit.SweepInterval, stop)
			return nil
		},
		OnStop: func(context.Context) error {
			close(stop)
			return nil
		},
	})
	log.Info("rate limiter using in-memory store")
	return store
}
