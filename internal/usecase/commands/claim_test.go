//go:build unit

package commands_test

import (
	"context"
	"testing"

	"booking-reconciler/internal/domain/actor"
	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/usecase/commands"
	"booking-reconciler/internal/usecase/queries"
	"booking-reconciler/internal/usecase/shared"
	"booking-reconciler/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimCommands_WithholdDeposit(t *testing.T) {
	ctx := context.Background()
	operator := actor.Actor{ID: uuid.New(), Role: actor.RoleOperator}

	cancelled := func(t *testing.T) *fixture {
		t.Helper()
		f := newFixture(t, builder.NewSnapshotBuilder().WithDeposit(20000, 30000))
		_, err := f.commands.Cancel(ctx, f.booking.ID, commands.CancelBookingRequest{}, uuid.New(), f.guest)
		require.NoError(t, err)
		return f
	}

	depositRelease := func(records []shared.InstructionRecord) *shared.InstructionRecord {
		for _, rec := range records {
			if rec.Instruction.Kind == cancellation.InstructionDepositRelease {
				return &rec
			}
		}
		return nil
	}

	t.Run("success: card side withheld first and release re-queued", func(t *testing.T) {
		f := cancelled(t)

		view, err := f.claims.WithholdDeposit(ctx, f.booking.ID, booking.NewMoney(25000), operator)
		require.NoError(t, err)

		res := view.Result
		assert.Equal(t, int64(25000), res.DepositWithheldFromCard.Cents())
		assert.True(t, res.DepositWithheldFromWallet.IsZero())
		assert.Equal(t, int64(5000), res.DepositFromCard.Cents())
		assert.Equal(t, int64(20000), res.DepositFromWallet.Cents())
		require.NoError(t, res.Check())

		release := depositRelease(view.Instructions)
		require.NotNil(t, release)
		assert.Equal(t, shared.InstructionQueued, release.Status)
		assert.Equal(t, int64(25000), release.Instruction.Amount.Cents())
		assert.Equal(t, int64(20000), release.Instruction.WalletPortion.Cents())
		assert.Equal(t, int64(5000), release.Instruction.CardPortion.Cents())
	})

	t.Run("success: later override replaces the earlier one", func(t *testing.T) {
		f := cancelled(t)

		_, err := f.claims.WithholdDeposit(ctx, f.booking.ID, booking.NewMoney(40000), operator)
		require.NoError(t, err)
		view, err := f.claims.WithholdDeposit(ctx, f.booking.ID, booking.NewMoney(10000), operator)
		require.NoError(t, err)

		assert.Equal(t, int64(10000), view.Result.DepositWithheld().Cents())
		assert.Equal(t, int64(40000), depositRelease(view.Instructions).Instruction.Amount.Cents())
	})

	t.Run("success: withholding everything voids the release", func(t *testing.T) {
		f := cancelled(t)

		view, err := f.claims.WithholdDeposit(ctx, f.booking.ID, booking.NewMoney(50000), operator)
		require.NoError(t, err)

		assert.Equal(t, shared.InstructionVoid, depositRelease(view.Instructions).Status)
		assert.True(t, view.Result.DepositFromCard.Add(view.Result.DepositFromWallet).IsZero())
	})

	t.Run("success: a release the dispatcher gave up on is re-queued", func(t *testing.T) {
		f := cancelled(t)
		f.store.SetInstructionStatus(cancellation.InstructionDepositRelease, shared.InstructionFailed)

		view, err := f.claims.WithholdDeposit(ctx, f.booking.ID, booking.NewMoney(10000), operator)
		require.NoError(t, err)

		release := depositRelease(view.Instructions)
		require.NotNil(t, release)
		assert.Equal(t, shared.InstructionQueued, release.Status)
		assert.Zero(t, release.Attempts)
		assert.Equal(t, int64(40000), release.Instruction.Amount.Cents())
	})

	t.Run("success: withholding everything voids a failed release", func(t *testing.T) {
		f := cancelled(t)
		f.store.SetInstructionStatus(cancellation.InstructionDepositRelease, shared.InstructionFailed)

		view, err := f.claims.WithholdDeposit(ctx, f.booking.ID, booking.NewMoney(50000), operator)
		require.NoError(t, err)

		assert.Equal(t, shared.InstructionVoid, depositRelease(view.Instructions).Status)
	})

	t.Run("error cases", func(t *testing.T) {
		tests := []struct {
			name    string
			prepare func(f *fixture)
			amount  int64
			by      actor.Actor
			wantErr error
		}{
			{
				name:    "support cannot withhold",
				amount:  1000,
				by:      actor.Actor{ID: uuid.New(), Role: actor.RoleSupport},
				wantErr: commands.ErrOperatorOnly,
			},
			{
				name:    "more than the deposit",
				amount:  50001,
				by:      operator,
				wantErr: cancellation.ErrInvalidWithholding,
			},
			{
				name: "release already sent",
				prepare: func(f *fixture) {
					f.store.SetInstructionStatus(cancellation.InstructionDepositRelease, shared.InstructionSent)
				},
				amount:  1000,
				by:      operator,
				wantErr: commands.ErrDepositAlreadyReleased,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := cancelled(t)
				if tt.prepare != nil {
					tt.prepare(f)
				}

				_, err := f.claims.WithholdDeposit(ctx, f.booking.ID, booking.NewMoney(tt.amount), tt.by)
				require.ErrorIs(t, err, tt.wantErr)
			})
		}
	})

	t.Run("error: booking was never cancelled", func(t *testing.T) {
		f := newFixture(t, builder.NewSnapshotBuilder().WithDeposit(0, 30000))

		_, err := f.claims.WithholdDeposit(ctx, f.booking.ID, booking.NewMoney(1000), operator)
		require.ErrorIs(t, err, queries.ErrCancellationNotFound)
	})
}
