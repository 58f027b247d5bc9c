package kafka

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/fulfillment/internal/config"
)

// Module exposes the lifecycle event publisher to fx graph.
var Module = fx.Options(
	fx.Provide(newPublisher),
	fx.Invoke(registerLifecycle),
)

type publisherParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newPublisher(p publisherParams) EventPublisher {
	if len(p.Config.KafkaBrokers) == 0 {
		p.Logger.Info("no kafka brokers configured, logging order events")
		return NewLogPublisher(p.Logger)
	}
	return NewPublisher(p.Config.KafkaBrokers, p.Config.KafkaTopic, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, publisher EventPublisher) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
}
