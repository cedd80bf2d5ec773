package api

import (
	"errors"
	"net/http"

	"booking-reconciler/internal/domain/actor"
	reqdto "booking-reconciler/internal/handler/dto/request"
	resdto "booking-reconciler/internal/handler/dto/response"
	"booking-reconciler/internal/handler/httperr"
	"booking-reconciler/internal/handler/middleware"
	"booking-reconciler/internal/usecase/commands"
	"booking-reconciler/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	errInvalidBookingID       = errors.New("invalid booking id")
	errIdempotencyKeyRequired = errors.New("idempotency-key header required")
	errActorMissing           = errors.New("actor missing from context")
)

type BookingHandler struct {
	queries       queries.BookingQueries
	cancellations commands.CancellationCommands
	claims        commands.ClaimCommands
}

func NewBookingHandler(q queries.BookingQueries, cancellations commands.CancellationCommands, claims commands.ClaimCommands) *BookingHandler {
	return &BookingHandler{
		queries:       q,
		cancellations: cancellations,
		claims:        claims,
	}
}

// @Summary Booking lifecycle state
// @Description Resolve the lifecycle state of a booking at an instant (default now)
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param at query string false "RFC3339 instant"
// @Success 200 {object} resdto.LifecycleResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/bookings/{id}/lifecycle [get]
func (h *BookingHandler) Lifecycle(c *gin.Context) {
	id, q, ok := h.bindRead(c)
	if !ok {
		return
	}
	viewer, ok := requireActor(c)
	if !ok {
		return
	}

	view, err := h.queries.Lifecycle(c.Request.Context(), id, q.At, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromLifecycleView(view))
}

// @Summary Cancellation quote
// @Description Preview the refund for cancelling at an instant (default now). Nothing is written.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param at query string false "RFC3339 instant"
// @Success 200 {object} resdto.QuoteResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 500 {object} httperr.Response
// @Router /api/bookings/{id}/cancellation-quote [get]
func (h *BookingHandler) QuoteCancellation(c *gin.Context) {
	id, q, ok := h.bindRead(c)
	if !ok {
		return
	}
	viewer, ok := requireActor(c)
	if !ok {
		return
	}

	quote, err := h.queries.QuoteCancellation(c.Request.Context(), id, q.At, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := resdto.FromQuoteView(quote)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel booking
// @Description Cancel a booking and queue its refund instructions
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.CancelBookingRequest false "Cancellation request"
// @Success 201 {object} resdto.CancellationResponse
// @Success 200 {object} resdto.CancellationResponse "Replayed"
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/bookings/{id}/cancellation [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	by, ok := requireActor(c)
	if !ok {
		return
	}

	key, err := uuid.Parse(c.GetHeader("Idempotency-Key"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, httperr.CodeValidation, errIdempotencyKeyRequired, "Idempotency-Key header must be a UUID", nil)
		return
	}

	var req reqdto.CancelBookingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, httperr.CodeValidation, err, "Invalid request format", nil)
			return
		}
	}

	result, err := h.cancellations.Cancel(c.Request.Context(), id, req.ToCommand(), key, by)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := resdto.FromCancellationView(result.Cancellation)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
		c.Header("Idempotent-Replayed", "true")
	}
	c.Header("Location", "/api/bookings/"+id.String()+"/cancellation")
	c.JSON(status, resp)
}

// @Summary Get cancellation
// @Description Stored cancellation result with the state of its refund instructions
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.CancellationResponse
// @Failure 404 {object} httperr.Response
// @Router /api/bookings/{id}/cancellation [get]
func (h *BookingHandler) GetCancellation(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	viewer, ok := requireActor(c)
	if !ok {
		return
	}

	view, err := h.queries.GetCancellation(c.Request.Context(), id, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := resdto.FromCancellationView(view)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Withhold deposit
// @Description Apply a damage claim outcome to a cancelled booking's deposit (operator only)
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.DepositHoldRequest true "Amount to withhold"
// @Success 200 {object} resdto.CancellationResponse
// @Failure 403 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/bookings/{id}/deposit-hold [post]
func (h *BookingHandler) WithholdDeposit(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	by, ok := requireActor(c)
	if !ok {
		return
	}

	var req reqdto.DepositHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, httperr.CodeValidation, err, "Invalid request format", nil)
		return
	}
	amount, err := req.Amount()
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.claims.WithholdDeposit(c.Request.Context(), id, amount, by)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := resdto.FromCancellationView(view)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) bindRead(c *gin.Context) (uuid.UUID, reqdto.InstantQuery, bool) {
	id, ok := bookingID(c)
	if !ok {
		return uuid.Nil, reqdto.InstantQuery{}, false
	}
	var q reqdto.InstantQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, httperr.CodeValidation, err, "Query parameter 'at' must be RFC3339", nil)
		return uuid.Nil, reqdto.InstantQuery{}, false
	}
	return id, q, true
}

func bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, httperr.CodeValidation, errInvalidBookingID, "Invalid booking ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func requireActor(c *gin.Context) (actor.Actor, bool) {
	a, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, httperr.CodeInternal, errActorMissing, "Internal server error", nil)
		return actor.Actor{}, false
	}
	return a, true
}
