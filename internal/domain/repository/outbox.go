package repository

import (
	"context"
	"time"

	"github.com/polkiloo/fulfillment/internal/domain/model"
)

// OutboxRepository stores lifecycle events until they are published.
type OutboxRepository interface {
	Append(ctx context.Context, event *model.OutboxEvent) error
	// ClaimBatch returns unpublished events whose previous claim is older than lease.
	ClaimBatch(ctx context.Context, limit int, lease time.Duration) ([]model.OutboxEvent, error)
	MarkPublished(ctx context.Context, id int64) error
}
