package queries

import (
	"context"
	"time"

	"booking-reconciler/internal/domain/actor"
	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/infra"
	"booking-reconciler/internal/pkg/clock"
	"booking-reconciler/internal/pkg/errs"
	"booking-reconciler/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound      = errs.New("booking not found")
	ErrCancellationNotFound = errs.New("cancellation not found")
	ErrForbidden            = errs.New("booking belongs to another guest")
)

type BookingQueries interface {
	// Lifecycle resolves the state at `at`, or now when at is nil.
	Lifecycle(ctx context.Context, bookingID uuid.UUID, at *time.Time, viewer actor.Actor) (*LifecycleView, error)
	// QuoteCancellation previews a cancellation without writing anything.
	QuoteCancellation(ctx context.Context, bookingID uuid.UUID, at *time.Time, viewer actor.Actor) (*QuoteView, error)
	GetCancellation(ctx context.Context, bookingID uuid.UUID, viewer actor.Actor) (*CancellationView, error)
}

type bookingQueriesImpl struct {
	uow    shared.UnitOfWork
	engine *cancellation.Engine
	clock  clock.Clock
}

func NewBookingQueries(uow shared.UnitOfWork, engine *cancellation.Engine, clock clock.Clock) BookingQueries {
	return &bookingQueriesImpl{
		uow:    uow,
		engine: engine,
		clock:  clock,
	}
}

func (q *bookingQueriesImpl) Lifecycle(ctx context.Context, bookingID uuid.UUID, at *time.Time, viewer actor.Actor) (*LifecycleView, error) {
	snap, err := q.snapshot(ctx, bookingID, viewer)
	if err != nil {
		return nil, err
	}

	evaluatedAt := q.instant(at)
	state := q.engine.Lifecycle(snap, evaluatedAt)
	return &LifecycleView{
		BookingID:          snap.ID,
		Code:               snap.Code,
		State:              state,
		AllowsCancellation: state.AllowsCancellation(),
		EvaluatedAt:        evaluatedAt,
	}, nil
}

func (q *bookingQueriesImpl) QuoteCancellation(ctx context.Context, bookingID uuid.UUID, at *time.Time, viewer actor.Actor) (*QuoteView, error) {
	snap, err := q.snapshot(ctx, bookingID, viewer)
	if err != nil {
		return nil, err
	}

	result, err := q.engine.Quote(snap, q.instant(at))
	if err != nil {
		return nil, err
	}
	return &QuoteView{Result: result, Instructions: result.Instructions()}, nil
}

func (q *bookingQueriesImpl) GetCancellation(ctx context.Context, bookingID uuid.UUID, viewer actor.Actor) (*CancellationView, error) {
	var view *CancellationView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.ReadTx) error {
		snap, err := tx.Bookings().Snapshot(ctx, bookingID)
		if err != nil {
			return mapNotFound(err, ErrBookingNotFound)
		}
		if err := Authorize(snap, viewer); err != nil {
			return err
		}

		stored, err := tx.Cancellations().ByBookingID(ctx, bookingID)
		if err != nil {
			return mapNotFound(err, ErrCancellationNotFound)
		}
		instructions, err := tx.Instructions().ByCancellation(ctx, stored.ID)
		if err != nil {
			return err
		}
		view = NewCancellationView(stored, instructions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (q *bookingQueriesImpl) snapshot(ctx context.Context, bookingID uuid.UUID, viewer actor.Actor) (booking.Snapshot, error) {
	var snap booking.Snapshot
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.ReadTx) error {
		var err error
		snap, err = tx.Bookings().Snapshot(ctx, bookingID)
		if err != nil {
			return mapNotFound(err, ErrBookingNotFound)
		}
		return Authorize(snap, viewer)
	})
	return snap, err
}

func (q *bookingQueriesImpl) instant(at *time.Time) time.Time {
	if at != nil {
		return *at
	}
	return q.clock.Now()
}

// Authorize lets guests reach only their own bookings; support and operators
// act on behalf of any guest.
func Authorize(s booking.Snapshot, a actor.Actor) error {
	if a.CanActOnBehalf() || a.ID == s.GuestID {
		return nil
	}
	return errs.Markf(ErrForbidden, "actor %s cannot access booking %s", a.ID, s.ID)
}

func mapNotFound(err error, sentinel error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Mark(err, sentinel)
	}
	return err
}
