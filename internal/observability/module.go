package observability

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/polkiloo/fulfillment/internal/config"
)

// Module provides metrics and the tracer provider.
var Module = fx.Options(
	fx.Provide(NewMetrics, newTracerProvider),
	fx.Invoke(registerTracerLifecycle),
)

type tracerParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
}

func newTracerProvider(p tracerParams) (*sdktrace.TracerProvider, error) {
	return NewTracerProvider(p.Ctx, p.Config.OTLPEndpoint)
}

func registerTracerLifecycle(lc fx.Lifecycle, tp *sdktrace.TracerProvider, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("tracer shutdown failed", "error", err)
				return err
			}
			return nil
		},
	})
}
