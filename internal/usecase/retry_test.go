package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/domain/repository"
)

type scriptedUnitOfWork struct {
	errs  []error
	calls int
}

func (u *scriptedUnitOfWork) WithinTransaction(ctx context.Context, fn func(repository.Factory) error) error {
	u.calls++
	if len(u.errs) == 0 {
		return nil
	}
	err := u.errs[0]
	u.errs = u.errs[1:]
	return err
}

func zeroBackOff(r *TxRunner) *TxRunner {
	r.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return r
}

func TestTxRunnerRetriesConflicts(t *testing.T) {
	uow := &scriptedUnitOfWork{errs: []error{domainErrors.ErrTransactionConflict, domainErrors.ErrTransactionConflict}}
	runner := zeroBackOff(NewTxRunner(uow, 3))

	require.NoError(t, runner.Run(context.Background(), func(repository.Factory) error { return nil }))
	assert.Equal(t, 3, uow.calls)
}

func TestTxRunnerStopsAfterMaxAttempts(t *testing.T) {
	uow := &scriptedUnitOfWork{errs: []error{
		domainErrors.ErrTransactionConflict,
		domainErrors.ErrTransactionConflict,
		domainErrors.ErrTransactionConflict,
	}}
	runner := zeroBackOff(NewTxRunner(uow, 2))

	err := runner.Run(context.Background(), func(repository.Factory) error { return nil })
	assert.ErrorIs(t, err, domainErrors.ErrTransactionConflict)
	assert.Equal(t, 2, uow.calls)
}

func TestTxRunnerDoesNotRetryPermanentErrors(t *testing.T) {
	boom := errors.New("boom")
	uow := &scriptedUnitOfWork{errs: []error{boom}}
	runner := zeroBackOff(NewTxRunner(uow, 5))

	err := runner.Run(context.Background(), func(repository.Factory) error { return nil })
	assert.Same(t, boom, err)
	assert.Equal(t, 1, uow.calls)
}

func TestTxRunnerHonoursContext(t *testing.T) {
	uow := &scriptedUnitOfWork{errs: []error{domainErrors.ErrTransactionConflict, domainErrors.ErrTransactionConflict}}
	runner := NewTxRunner(uow, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runner.Run(ctx, func(repository.Factory) error { return nil })
	assert.Error(t, err)
	assert.LessOrEqual(t, uow.calls, 1)
}
