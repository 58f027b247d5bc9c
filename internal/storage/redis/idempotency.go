package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
)

const (
	keyPrefix     = "idempotency:"
	pendingMarker = "pending"
	// DefaultLockTTL bounds how long an unfinished request holds its key.
	DefaultLockTTL = time.Minute
)

// Record is a stored response replayed for repeated requests.
type Record struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore remembers responses by client supplied key.
type IdempotencyStore struct {
	client  goredis.UniversalClient
	ttl     time.Duration
	lockTTL time.Duration
}

// NewIdempotencyStore keeps completed responses for ttl.
func NewIdempotencyStore(client goredis.UniversalClient, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl, lockTTL: DefaultLockTTL}
}

// Reserve claims key for a new request. When the key was already completed the
// stored record is returned instead; a key still in flight yields ErrIdempotencyConflict.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (*Record, bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, pendingMarker, s.lockTTL).Result()
	if err != nil {
		return nil, false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if ok {
		return nil, true, nil
	}

	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, domainErrors.ErrIdempotencyConflict
		}
		return nil, false, fmt.Errorf("load idempotency key: %w", err)
	}
	if string(raw) == pendingMarker {
		return nil, false, domainErrors.ErrIdempotencyConflict
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &rec, false, nil
}

// Complete stores the final response for key.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+key, data, s.ttl).Err()
}

// Release frees key so the request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

func (s *IdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *IdempotencyStore) Close() error {
	return s.client.Close()
}
