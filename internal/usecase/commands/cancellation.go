package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"booking-reconciler/internal/domain/actor"
	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/infra"
	"booking-reconciler/internal/pkg/clock"
	"booking-reconciler/internal/pkg/errs"
	"booking-reconciler/internal/usecase/queries"
	"booking-reconciler/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	cancelEndpoint = "POST /api/bookings/:id/cancellation"
	idempotencyTTL = 24 * time.Hour
)

var (
	ErrIdempotencyInProgress   = errs.New("idempotency in progress")
	ErrIdempotencyKeyReused    = errs.New("idempotency key reused with a different request")
	ErrIdempotencyCheckFailed  = errs.New("idempotency check failed")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

type CancelBookingRequest struct {
	// RequestedAt back-dates the cancellation; only staff may set it.
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	Reason      *string    `json:"reason,omitempty"`
}

type CancelBookingResult struct {
	Cancellation *queries.CancellationView
	IsReplayed   bool
}

type CancellationCommands interface {
	Cancel(ctx context.Context, bookingID uuid.UUID, req CancelBookingRequest, idempotencyKey uuid.UUID, by actor.Actor) (*CancelBookingResult, error)
}

type cancellationCommandsImpl struct {
	uow    shared.UnitOfWork
	engine *cancellation.Engine
	clock  clock.Clock
}

func NewCancellationCommands(uow shared.UnitOfWork, engine *cancellation.Engine, clock clock.Clock) CancellationCommands {
	return &cancellationCommandsImpl{
		uow:    uow,
		engine: engine,
		clock:  clock,
	}
}

// Cancel runs the engine against a locked snapshot and persists the result,
// the booking status and the refund instructions in one transaction. A
// repeated idempotency key replays the stored cancellation.
func (c *cancellationCommandsImpl) Cancel(
	ctx context.Context,
	bookingID uuid.UUID,
	req CancelBookingRequest,
	idempotencyKey uuid.UUID,
	by actor.Actor,
) (*CancelBookingResult, error) {
	now := c.clock.Now()
	cancelAt := now
	if req.RequestedAt != nil && by.CanActOnBehalf() {
		cancelAt = *req.RequestedAt
	}
	requestHash := calculateRequestHash(bookingID, req)

	var result *CancelBookingResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		replayed, err := c.handleIdempotency(ctx, tx, idempotencyKey, by.ID, requestHash, now)
		if err != nil {
			return err
		}
		if replayed != nil {
			result = &CancelBookingResult{Cancellation: replayed, IsReplayed: true}
			return nil
		}

		view, err := c.cancel(ctx, tx, bookingID, cancelAt, req.Reason, by)
		if err != nil {
			return err
		}
		if err := tx.Idempotency().MarkCompleted(ctx, idempotencyKey, by.ID, view.ID); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		result = &CancelBookingResult{Cancellation: view}
		return nil
	})
	if err != nil {
		if errors.Is(err, cancellation.ErrDataIntegrity) {
			slog.Error("cancellation rejected by integrity check, operator review required",
				"booking_id", bookingID.String(),
				"actor_id", by.ID.String(),
				"error", err.Error())
		}
		return nil, err
	}
	return result, nil
}

func (c *cancellationCommandsImpl) handleIdempotency(
	ctx context.Context,
	tx shared.Tx,
	key, actorID uuid.UUID,
	requestHash string,
	now time.Time,
) (*queries.CancellationView, error) {
	inserted, err := tx.Idempotency().TryInsert(ctx, key, actorID, cancelEndpoint, requestHash, now, now.Add(idempotencyTTL))
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	if inserted {
		return nil, nil
	}

	existing, err := tx.Idempotency().Get(ctx, key, actorID, now)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	if existing.RequestHash != requestHash {
		return nil, ErrIdempotencyKeyReused
	}

	switch existing.Status {
	case shared.IdempotencyCompleted:
		if existing.ResultCancellationID == nil {
			return nil, errs.New("completed request missing result cancellation ID")
		}
		return loadCancellationView(ctx, tx, *existing.ResultCancellationID)

	case shared.IdempotencyProcessing:
		return nil, ErrIdempotencyInProgress

	default:
		return nil, errs.New("invalid idempotency key status")
	}
}

func (c *cancellationCommandsImpl) cancel(
	ctx context.Context,
	tx shared.Tx,
	bookingID uuid.UUID,
	cancelAt time.Time,
	reason *string,
	by actor.Actor,
) (*queries.CancellationView, error) {
	snap, err := tx.Bookings().SnapshotForUpdate(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, queries.ErrBookingNotFound)
		}
		return nil, err
	}
	if err := queries.Authorize(snap, by); err != nil {
		return nil, err
	}

	refund, err := c.engine.Quote(snap, cancelAt)
	if err != nil {
		return nil, err
	}

	cancellationID, err := tx.CancellationWriter().Create(ctx, shared.NewCancellation{
		BookingID: bookingID,
		ActorID:   by.ID,
		Reason:    reason,
		Result:    refund,
	})
	if err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, errs.Markf(cancellation.ErrInvalidTransition, "booking %s already has a cancellation", bookingID)
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if err := tx.BookingWriter().MarkCancelled(ctx, bookingID, cancelAt); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, errs.Markf(cancellation.ErrInvalidTransition, "booking %s already cancelled", bookingID)
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if err := tx.Outbox().Enqueue(ctx, cancellationID, bookingID, refund.Instructions(), c.clock.Now()); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	slog.Info("booking cancelled",
		"booking_id", bookingID.String(),
		"cancellation_id", cancellationID.String(),
		"tier", refund.Tier.String(),
		"refund_cents", refund.RefundAmount.Cents(),
		"penalty_cents", refund.PenaltyAmount.Cents())

	return loadCancellationView(ctx, tx, cancellationID)
}

func loadCancellationView(ctx context.Context, tx shared.ReadTx, cancellationID uuid.UUID) (*queries.CancellationView, error) {
	stored, err := tx.Cancellations().ByID(ctx, cancellationID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	instructions, err := tx.Instructions().ByCancellation(ctx, cancellationID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return queries.NewCancellationView(stored, instructions), nil
}

func calculateRequestHash(bookingID uuid.UUID, req CancelBookingRequest) string {
	data, _ := json.Marshal(struct {
		BookingID uuid.UUID `json:"booking_id"`
		CancelBookingRequest
	}{bookingID, req})
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
