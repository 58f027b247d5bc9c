package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// OutboxSource exposes the subset of application functionality required by the relay.
type OutboxSource interface {
	ClaimEvents(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkEventPublished(ctx context.Context, id int64) error
}

// EventPublisher delivers one lifecycle event to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event model.OutboxEvent) error
}

// PublishObserver is notified about every publish attempt.
type PublishObserver interface {
	EventPublished(ok bool)
}

// OutboxRelay polls committed outbox events and publishes them concurrently.
// Events of one order go through the same worker in commit order. When one of
// them fails, the rest of that order's batch is held back until it is reclaimed.
type OutboxRelay struct {
	source       OutboxSource
	publisher    EventPublisher
	observer     PublishObserver
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

type relayJob struct {
	event model.OutboxEvent
	batch uint64
}

// NewOutboxRelay constructs the relay worker pool.
func NewOutboxRelay(
	source OutboxSource,
	publisher EventPublisher,
	observer PublishObserver,
	pollInterval time.Duration,
	batchSize, workers int,
	logger *slog.Logger,
) *OutboxRelay {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &OutboxRelay{
		source:       source,
		publisher:    publisher,
		observer:     observer,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
	}
}

// Start launches background publishing. A stopped relay may be started again.
func (r *OutboxRelay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	jobs := make([]chan relayJob, r.workers)
	for i := range jobs {
		jobs[i] = make(chan relayJob, r.batchSize)
		r.wg.Add(1)
		go r.worker(runCtx, jobs[i])
	}

	r.wg.Add(1)
	go r.dispatch(runCtx, jobs)
}

// Stop waits for all workers to finish.
func (r *OutboxRelay) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *OutboxRelay) dispatch(ctx context.Context, jobs []chan relayJob) {
	defer r.wg.Done()
	defer func() {
		for _, ch := range jobs {
			close(ch)
		}
	}()
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	var batch uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			batch++
			r.claimAndDispatch(ctx, jobs, batch)
		}
	}
}

func (r *OutboxRelay) claimAndDispatch(ctx context.Context, jobs []chan relayJob, batch uint64) {
	events, err := r.source.ClaimEvents(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("claim outbox events failed", slog.String("error", err.Error()))
		return
	}
	for _, event := range events {
		select {
		case <-ctx.Done():
			return
		case jobs[r.shard(event)] <- relayJob{event: event, batch: batch}:
		}
	}
}

func (r *OutboxRelay) shard(event model.OutboxEvent) int {
	id := event.AggregateID
	if id < 0 {
		id = -id
	}
	return int(id % int64(r.workers))
}

func (r *OutboxRelay) worker(ctx context.Context, jobs <-chan relayJob) {
	defer r.wg.Done()

	var (
		batch  uint64
		failed = make(map[int64]struct{})
	)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if job.batch != batch {
				batch = job.batch
				clear(failed)
			}
			if _, held := failed[job.event.AggregateID]; held {
				r.logger.Debug("holding event behind failed predecessor",
					slog.Int64("id", job.event.ID),
					slog.Int64("order_id", job.event.AggregateID),
				)
				continue
			}
			if !r.handleEvent(ctx, job.event) {
				failed[job.event.AggregateID] = struct{}{}
			}
		}
	}
}

// handleEvent reports whether event reached the publisher. Failed events stay
// claimed and are retried once the claim lease expires.
func (r *OutboxRelay) handleEvent(ctx context.Context, event model.OutboxEvent) bool {
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.observer.EventPublished(false)
		r.logger.Warn("publish event failed",
			slog.String("event_id", event.EventID.String()),
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()),
		)
		return false
	}
	r.observer.EventPublished(true)

	if err := r.source.MarkEventPublished(ctx, event.ID); err != nil {
		r.logger.Error("mark event published failed",
			slog.Int64("id", event.ID),
			slog.String("error", err.Error()),
		)
	}
	return true
}
