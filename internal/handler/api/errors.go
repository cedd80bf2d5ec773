package api

import (
	"errors"
	"log/slog"
	"net/http"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/handler/httperr"
	"booking-reconciler/internal/handler/middleware"
	"booking-reconciler/internal/usecase/commands"
	"booking-reconciler/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{queries.ErrBookingNotFound, http.StatusNotFound, httperr.CodeNotFound, "Booking not found"},
	{queries.ErrCancellationNotFound, http.StatusNotFound, httperr.CodeNotFound, "Cancellation not found"},
	{queries.ErrForbidden, http.StatusForbidden, httperr.CodeForbidden, "Booking belongs to another guest"},
	{commands.ErrOperatorOnly, http.StatusForbidden, httperr.CodeForbidden, "Operator role required"},
	{cancellation.ErrInvalidTransition, http.StatusConflict, httperr.CodeInvalidTransition, "Booking cannot be cancelled in its current state"},
	{cancellation.ErrTimingOutOfRange, http.StatusBadRequest, httperr.CodeTimingOutOfRange, "Cancellation instant is outside the booking window"},
	{commands.ErrIdempotencyKeyReused, http.StatusUnprocessableEntity, httperr.CodeIdempotency, "Idempotency key was used for a different request"},
	{commands.ErrIdempotencyInProgress, http.StatusConflict, httperr.CodeIdempotency, "Request with this idempotency key is being processed"},
	{commands.ErrDepositAlreadyReleased, http.StatusConflict, httperr.CodeInvalidWithholding, "Deposit has already been released"},
	{cancellation.ErrInvalidWithholding, http.StatusUnprocessableEntity, httperr.CodeInvalidWithholding, "Withheld amount must be between zero and the deposit"},
	{booking.ErrInvalidMoney, http.StatusBadRequest, httperr.CodeValidation, "Invalid amount"},
}

// respondError maps use case errors onto the error envelope. Integrity
// failures are logged at ERROR so operators get paged.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			httperr.AbortWithError(c, m.status, m.code, err, m.message, nil)
			return
		}
	}

	if errors.Is(err, cancellation.ErrDataIntegrity) {
		slog.Error("booking data failed integrity check",
			"booking_id", c.Param("id"),
			"request_id", middleware.GetRequestID(c),
			"error", err.Error())
		httperr.AbortWithError(c, http.StatusInternalServerError, httperr.CodeDataIntegrity, err,
			"Booking data is inconsistent and needs operator review", nil)
		return
	}

	slog.Error("unhandled error", "path", c.FullPath(), "error", err.Error())
	httperr.AbortWithError(c, http.StatusInternalServerError, httperr.CodeInternal, err, "Internal server error", nil)
}
