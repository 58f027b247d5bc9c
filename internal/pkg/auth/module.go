package auth

import (
	"github.com/polkiloo/fulfillment/internal/config"
	"go.uber.org/fx"
)

// Module provides admin token verification via fx.
var Module = fx.Provide(newTokenStrategy)

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) Strategy {
	return NewJWTStrategy(p.Config.JWTSecret, Options{})
}
