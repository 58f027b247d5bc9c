package usecase

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/domain/repository"
)

const (
	retryInitialInterval = 10 * time.Millisecond
	retryMaxInterval     = 200 * time.Millisecond
)

// TxRunner executes callbacks in a unit of work, repeating the whole callback
// when the store aborts it with ErrTransactionConflict.
type TxRunner struct {
	uow         repository.UnitOfWork
	maxAttempts int
	newBackOff  func() backoff.BackOff
}

// NewTxRunner constructs a runner making at most maxAttempts attempts.
func NewTxRunner(uow repository.UnitOfWork, maxAttempts int) *TxRunner {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &TxRunner{
		uow:         uow,
		maxAttempts: maxAttempts,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = retryInitialInterval
			b.MaxInterval = retryMaxInterval
			b.MaxElapsedTime = 0
			return b
		},
	}
}

// Run calls fn inside a transaction. Errors other than conflicts are returned at once.
func (r *TxRunner) Run(ctx context.Context, fn func(tx repository.Factory) error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.maxAttempts-1)), ctx)
	return backoff.Retry(func() error {
		err := r.uow.WithinTransaction(ctx, fn)
		if err == nil || domainErrors.IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}
