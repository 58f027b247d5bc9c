package postgres

import (
	"context"
	"sort"
	"time"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/domain/model"
)

type outboxRepository struct {
	q querier
}

func (r *outboxRepository) Append(ctx context.Context, e *model.OutboxEvent) error {
	const query = `INSERT INTO outbox_events (event_id, aggregate_id, event_type, payload, created_at)
                   VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.q.QueryRow(ctx, query, e.EventID, e.AggregateID, e.Type, e.Payload, e.CreatedAt).Scan(&e.ID)
}

// ClaimBatch marks up to limit pending events as claimed in one statement.
// Rows locked by another relay are skipped; expired claims become visible again.
// An event waits while an earlier event of the same order is still claimed,
// so one order's events are never published out of commit order.
func (r *outboxRepository) ClaimBatch(ctx context.Context, limit int, lease time.Duration) ([]model.OutboxEvent, error) {
	const query = `UPDATE outbox_events SET claimed_at = NOW()
                   WHERE id IN (
                       SELECT e.id FROM outbox_events e
                       WHERE e.published_at IS NULL
                         AND (e.claimed_at IS NULL OR e.claimed_at < NOW() - make_interval(secs => $2))
                         AND NOT EXISTS (
                             SELECT 1 FROM outbox_events prev
                             WHERE prev.aggregate_id = e.aggregate_id
                               AND prev.id < e.id
                               AND prev.published_at IS NULL
                               AND prev.claimed_at >= NOW() - make_interval(secs => $2)
                         )
                       ORDER BY e.id
                       LIMIT $1
                       FOR UPDATE OF e SKIP LOCKED
                   )
                   RETURNING id, event_id, aggregate_id, event_type, payload, created_at`
	rows, err := r.q.Query(ctx, query, limit, lease.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.OutboxEvent
	for rows.Next() {
		var e model.OutboxEvent
		if err := rows.Scan(&e.ID, &e.EventID, &e.AggregateID, &e.Type, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, id int64) error {
	const query = `UPDATE outbox_events SET published_at = NOW() WHERE id=$1`
	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
