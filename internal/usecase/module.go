package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/fulfillment/internal/config"
	"github.com/polkiloo/fulfillment/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newTxRunner,
	NewInventoryLedger,
	NewFulfillmentCoordinator,
)

func newTxRunner(uow repository.UnitOfWork, cfg *config.Config) *TxRunner {
	return NewTxRunner(uow, cfg.TxMaxRetries)
}
