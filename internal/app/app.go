package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/fulfillment/internal/config"
	"github.com/polkiloo/fulfillment/internal/storage/postgres"
	"github.com/polkiloo/fulfillment/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		func(s *postgres.Storage) HealthChecker { return s },
		NewFulfillmentFacade,
		newHTTPServer,
		newOutboxRelay,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type relayParams struct {
	fx.In

	Facade    *FulfillmentFacade
	Publisher worker.EventPublisher
	Observer  worker.PublishObserver
	Config    *config.Config
	Logger    *slog.Logger
}

func newOutboxRelay(p relayParams) *worker.OutboxRelay {
	return worker.NewOutboxRelay(
		p.Facade,
		p.Publisher,
		p.Observer,
		p.Config.OutboxPollInterval,
		p.Config.OutboxBatchSize,
		p.Config.RelayWorkers,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Relay      *worker.OutboxRelay
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting fulfillment", slog.String("addr", p.Server.Addr))
			// The relay outlives the start context; Stop cancels it.
			p.Relay.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			p.Relay.Stop()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("fulfillment stopped")
			return nil
		},
	})
}
