package syncbus

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/reportdesk/internal/config"
)

const defaultChannel = "reportdesk:users"

// NewModule provides the Bus and, when redis is configured, the shared redis
// client. With no redis address the bus degrades to in-process fan-out.
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			func(cfg *config.AppConfig) *redis.Client {
				if cfg.Redis.Addr == "" {
					return nil
				}
				return redis.NewClient(&redis.Options{
					Addr:     cfg.Redis.Addr,
					Password: cfg.Redis.Password,
					DB:       cfg.Redis.DB,
				})
			},
		),
		fx.Provide(
			func(cfg *config.AppConfig, client *redis.Client, log *zap.Logger, lc fx.Lifecycle) Bus {
				if client == nil {
					return NewLocalBus()
				}

				channel := cfg.Redis.Channel
				if channel == "" {
					channel = defaultChannel
				}
				bus := NewRedisBus(client, channel, log)
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return bus.Start(ctx)
					},
					OnStop: func(ctx context.Context) error {
						bus.Stop()
						return client.Close()
					},
				})
				return bus
			},
		),
	)
}
