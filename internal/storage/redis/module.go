package redis

import (
	"context"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/fulfillment/internal/config"
)

// Module provides the idempotency store. The store is nil when Redis is not configured.
var Module = fx.Options(
	fx.Provide(newStore),
	fx.Invoke(registerLifecycle),
)

type storeParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newStore(p storeParams) *IdempotencyStore {
	if p.Config.RedisAddress == "" {
		p.Logger.Info("redis not configured, idempotency keys are ignored")
		return nil
	}
	client := goredis.NewClient(&goredis.Options{Addr: p.Config.RedisAddress})
	return NewIdempotencyStore(client, p.Config.IdempotencyTTL)
}

func registerLifecycle(lc fx.Lifecycle, store *IdempotencyStore, logger *slog.Logger) {
	if store == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := store.Ping(ctx); err != nil {
				logger.Warn("redis unreachable", slog.String("error", err.Error()))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})
}
