package commands

import (
	"context"
	"log/slog"

	"booking-reconciler/internal/domain/actor"
	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/infra"
	"booking-reconciler/internal/pkg/clock"
	"booking-reconciler/internal/pkg/errs"
	"booking-reconciler/internal/usecase/queries"
	"booking-reconciler/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrOperatorOnly           = errs.New("deposit withholding requires the operator role")
	ErrDepositAlreadyReleased = errs.New("deposit release already sent")
)

type ClaimCommands interface {
	// WithholdDeposit applies a damage claim decided elsewhere to a cancelled
	// booking. The amount replaces any earlier withholding.
	WithholdDeposit(ctx context.Context, bookingID uuid.UUID, amount booking.Money, by actor.Actor) (*queries.CancellationView, error)
}

type claimCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewClaimCommands(uow shared.UnitOfWork, clock clock.Clock) ClaimCommands {
	return &claimCommandsImpl{
		uow:   uow,
		clock: clock,
	}
}

func (c *claimCommandsImpl) WithholdDeposit(ctx context.Context, bookingID uuid.UUID, amount booking.Money, by actor.Actor) (*queries.CancellationView, error) {
	if by.Role != actor.RoleOperator {
		return nil, ErrOperatorOnly
	}

	var view *queries.CancellationView
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		stored, err := tx.Cancellations().ByBookingID(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, queries.ErrCancellationNotFound)
			}
			return err
		}

		if err := ensureDepositNotReleased(ctx, tx, stored.ID); err != nil {
			return err
		}

		updated, err := stored.Result.WithDepositWithheld(amount)
		if err != nil {
			return err
		}
		if err := updated.Check(); err != nil {
			return err
		}

		if err := tx.CancellationWriter().UpdateDeposit(ctx, stored.ID, updated); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		var release *cancellation.Instruction
		if in := updated.DepositReleaseInstruction(); !in.Amount.IsZero() {
			release = &in
		}
		if err := tx.Outbox().ReplaceDepositRelease(ctx, stored.ID, bookingID, release, c.clock.Now()); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.Mark(err, ErrDepositAlreadyReleased)
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		slog.Info("deposit withheld",
			"booking_id", bookingID.String(),
			"cancellation_id", stored.ID.String(),
			"operator_id", by.ID.String(),
			"withheld_cents", updated.DepositWithheld().Cents())

		view, err = loadCancellationView(ctx, tx, stored.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func ensureDepositNotReleased(ctx context.Context, tx shared.Tx, cancellationID uuid.UUID) error {
	instructions, err := tx.Instructions().ByCancellation(ctx, cancellationID)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	for _, in := range instructions {
		if in.Instruction.Kind == cancellation.InstructionDepositRelease && in.Status == shared.InstructionSent {
			return ErrDepositAlreadyReleased
		}
	}
	return nil
}
