package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/fulfillment/internal/adapter/kafka"
	"github.com/polkiloo/fulfillment/internal/app"
	"github.com/polkiloo/fulfillment/internal/config"
	"github.com/polkiloo/fulfillment/internal/logger"
	"github.com/polkiloo/fulfillment/internal/observability"
	"github.com/polkiloo/fulfillment/internal/pkg/auth"
	"github.com/polkiloo/fulfillment/internal/server/http/handlers"
	"github.com/polkiloo/fulfillment/internal/server/http/router"
	"github.com/polkiloo/fulfillment/internal/storage/postgres"
	redisstore "github.com/polkiloo/fulfillment/internal/storage/redis"
	"github.com/polkiloo/fulfillment/internal/usecase"
	"github.com/polkiloo/fulfillment/internal/worker"
)

// Module composes the whole service graph; opts are appended last so tests can fx.Replace parts of it.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		observability.Module,
		postgres.Module,
		redisstore.Module,
		auth.Module,
		kafka.Module,
		fx.Provide(
			func(p kafka.EventPublisher) worker.EventPublisher { return p },
			func(m *observability.Metrics) worker.PublishObserver { return m },
		),
		usecase.Module,
		fx.Provide(func(f *app.FulfillmentFacade) handlers.FulfillmentFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
