package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/server/http/dto"
	redisstore "github.com/polkiloo/fulfillment/internal/storage/redis"
)

const (
	// IdempotencyHeader carries the client chosen request key.
	IdempotencyHeader = "Idempotency-Key"
	// ReplayedHeader marks responses served from the idempotency store.
	ReplayedHeader = "Idempotent-Replayed"
)

// IdempotencyStore remembers responses by key.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (*redisstore.Record, bool, error)
	Complete(ctx context.Context, key string, rec redisstore.Record) error
	Release(ctx context.Context, key string) error
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Server errors and transaction conflicts free the key instead of being stored.
// Requests without the header pass through untouched. When the store is
// unreachable requests are served without deduplication.
func Idempotency(store IdempotencyStore, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		if key == "" {
			c.Next()
			return
		}
		key = c.Request.Method + " " + c.Request.URL.Path + " " + key

		rec, reserved, err := store.Reserve(c.Request.Context(), key)
		switch {
		case errors.Is(err, domainErrors.ErrIdempotencyConflict):
			c.AbortWithStatusJSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
			return
		case err != nil:
			logger.Warn("idempotency store unavailable", slog.String("error", err.Error()))
			c.Next()
			return
		case !reserved:
			c.Header(ReplayedHeader, "true")
			c.Data(rec.Status, rec.ContentType, rec.Body)
			c.Abort()
			return
		}

		writer := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		ctx := context.WithoutCancel(c.Request.Context())
		status := writer.Status()
		if status >= http.StatusInternalServerError || retryable(c) {
			if err := store.Release(ctx, key); err != nil {
				logger.Warn("release idempotency key", slog.String("error", err.Error()))
			}
			return
		}
		err = store.Complete(ctx, key, redisstore.Record{
			Status:      status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		})
		if err != nil {
			logger.Warn("store idempotent response", slog.String("error", err.Error()))
		}
	}
}

// retryable reports whether the handler failed on a transaction conflict,
// which a repeat of the same request may not hit.
func retryable(c *gin.Context) bool {
	for _, e := range c.Errors {
		if errors.Is(e.Err, domainErrors.ErrTransactionConflict) {
			return true
		}
	}
	return false
}

type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
