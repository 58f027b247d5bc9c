package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/server/http/dto"
)

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrOrderNotFound), errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrInvalidReference),
		errors.Is(err, domainErrors.ErrInsufficientStock),
		errors.Is(err, domainErrors.ErrInsufficientPayment),
		errors.Is(err, domainErrors.ErrInvalidStatusTransition),
		errors.Is(err, domainErrors.ErrInvalidQuantity),
		errors.Is(err, domainErrors.ErrInvalidAmount),
		errors.Is(err, domainErrors.ErrInvalidPaymentMethod),
		errors.Is(err, domainErrors.ErrEmptyOrder):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrTransactionConflict),
		errors.Is(err, domainErrors.ErrAlreadyExists),
		errors.Is(err, domainErrors.ErrIdempotencyConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the mapped status. Internal errors are hidden from
// the client. Internal errors and transaction conflicts are attached to the
// context so the request logger and idempotency middleware can see them.
func writeError(c *gin.Context, err error) {
	status := StatusFor(err)
	msg := err.Error()
	switch {
	case status == http.StatusInternalServerError:
		_ = c.Error(err)
		msg = http.StatusText(status)
	case errors.Is(err, domainErrors.ErrTransactionConflict):
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg})
}

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
