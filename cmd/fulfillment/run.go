package main

import (
	"context"
	"fmt"

	"go.uber.org/fx"
)

// run starts app and blocks until ctx is cancelled or fx asks to shut down.
func run(ctx context.Context, app *fx.App) error {
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start fulfillment: %w", err)
	}

	select {
	case <-ctx.Done():
	case sig := <-app.Done():
		fmt.Printf("received %s, shutting down\n", sig)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop fulfillment: %w", err)
	}
	return nil
}
