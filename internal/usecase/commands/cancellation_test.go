//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"booking-reconciler/internal/domain/actor"
	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/pkg/clock"
	"booking-reconciler/internal/usecase/commands"
	"booking-reconciler/internal/usecase/queries"
	"booking-reconciler/internal/usecase/shared"
	"booking-reconciler/tests/common/builder"
	"booking-reconciler/tests/common/memuow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memuow.Store
	clock    *clock.MockClock
	commands commands.CancellationCommands
	claims   commands.ClaimCommands
	booking  booking.Snapshot
	guest    actor.Actor
}

// newFixture puts the clock 10 hours before pickup, inside the late tier.
func newFixture(t *testing.T, b *builder.SnapshotBuilder) *fixture {
	t.Helper()

	snap := b.Build()
	clk := clock.NewMockClock(snap.PickupAt.Add(-10 * time.Hour))
	store := memuow.New(clk.Now)
	store.PutBooking(snap)

	engine := cancellation.NewEngine(cancellation.DefaultPolicy(builder.PolicyZone()), booking.DefaultLifecycleRules())
	return &fixture{
		store:    store,
		clock:    clk,
		commands: commands.NewCancellationCommands(store, engine, clk),
		claims:   commands.NewClaimCommands(store, clk),
		booking:  snap,
		guest:    actor.Actor{ID: snap.GuestID, Role: actor.RoleGuest},
	}
}

func instructionAmounts(records []shared.InstructionRecord) map[cancellation.InstructionKind]int64 {
	out := make(map[cancellation.InstructionKind]int64, len(records))
	for _, rec := range records {
		out[rec.Instruction.Kind] = rec.Instruction.Amount.Cents()
	}
	return out
}

func TestCancellationCommands_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("success: persists result, cancels booking and queues instructions", func(t *testing.T) {
		f := newFixture(t, builder.NewSnapshotBuilder().WithFunding(10000, 0).WithDeposit(20000, 30000))

		result, err := f.commands.Cancel(ctx, f.booking.ID, commands.CancelBookingRequest{}, uuid.New(), f.guest)
		require.NoError(t, err)
		require.False(t, result.IsReplayed)

		view := result.Cancellation
		assert.Equal(t, cancellation.TierLate, view.Result.Tier)
		assert.Equal(t, int64(15000), view.Result.RefundAmount.Cents())
		assert.Equal(t, f.guest.ID, view.ActorID)
		assert.Equal(t, map[cancellation.InstructionKind]int64{
			cancellation.InstructionCardRefund:     10000,
			cancellation.InstructionCreditRestore:  5000,
			cancellation.InstructionDepositRelease: 50000,
		}, instructionAmounts(view.Instructions))

		stored := f.store.Booking(f.booking.ID)
		assert.Equal(t, booking.StatusCancelled, stored.Status)
		require.NotNil(t, stored.CancelledAt)
		assert.True(t, stored.CancelledAt.Equal(f.clock.Now()))
	})

	t.Run("replay: same key and body returns the stored result", func(t *testing.T) {
		f := newFixture(t, builder.NewSnapshotBuilder())
		key := uuid.New()
		reason := "plans changed"
		req := commands.CancelBookingRequest{Reason: &reason}

		first, err := f.commands.Cancel(ctx, f.booking.ID, req, key, f.guest)
		require.NoError(t, err)

		f.clock.Add(time.Hour)
		second, err := f.commands.Cancel(ctx, f.booking.ID, req, key, f.guest)
		require.NoError(t, err)

		assert.True(t, second.IsReplayed)
		assert.Equal(t, first.Cancellation.ID, second.Cancellation.ID)
		assert.True(t, first.Cancellation.Result.RefundAmount.Equal(second.Cancellation.Result.RefundAmount))
		assert.Len(t, f.store.Instructions(), len(first.Cancellation.Instructions))
		assert.Len(t, f.store.Cancellations(), 1)
	})

	t.Run("error: same key with a different body", func(t *testing.T) {
		f := newFixture(t, builder.NewSnapshotBuilder())
		key := uuid.New()
		first, second := "first", "second"

		_, err := f.commands.Cancel(ctx, f.booking.ID, commands.CancelBookingRequest{Reason: &first}, key, f.guest)
		require.NoError(t, err)

		_, err = f.commands.Cancel(ctx, f.booking.ID, commands.CancelBookingRequest{Reason: &second}, key, f.guest)
		require.ErrorIs(t, err, commands.ErrIdempotencyKeyReused)
	})

	t.Run("error: second cancellation with a new key is an invalid transition", func(t *testing.T) {
		f := newFixture(t, builder.NewSnapshotBuilder())

		_, err := f.commands.Cancel(ctx, f.booking.ID, commands.CancelBookingRequest{}, uuid.New(), f.guest)
		require.NoError(t, err)

		_, err = f.commands.Cancel(ctx, f.booking.ID, commands.CancelBookingRequest{}, uuid.New(), f.guest)
		require.ErrorIs(t, err, cancellation.ErrInvalidTransition)
		assert.Len(t, f.store.Cancellations(), 1)
	})

	t.Run("error: another guest cannot cancel", func(t *testing.T) {
		f := newFixture(t, builder.NewSnapshotBuilder())
		stranger := actor.Actor{ID: uuid.New(), Role: actor.RoleGuest}

		_, err := f.commands.Cancel(ctx, f.booking.ID, commands.CancelBookingRequest{}, uuid.New(), stranger)
		require.ErrorIs(t, err, queries.ErrForbidden)
		assert.Equal(t, booking.StatusConfirmed, f.store.Booking(f.booking.ID).Status)
		assert.Empty(t, f.store.Instructions())
	})

	t.Run("error: unknown booking", func(t *testing.T) {
		f := newFixture(t, builder.NewSnapshotBuilder())

		_, err := f.commands.Cancel(ctx, uuid.New(), commands.CancelBookingRequest{}, uuid.New(), f.guest)
		require.ErrorIs(t, err, queries.ErrBookingNotFound)
	})

	t.Run("error: started trip rolls back everything", func(t *testing.T) {
		b := builder.NewSnapshotBuilder().AsStarted()
		f := newFixture(t, b)
		f.clock.Set(f.booking.PickupAt.Add(time.Hour))

		_, err := f.commands.Cancel(ctx, f.booking.ID, commands.CancelBookingRequest{}, uuid.New(), f.guest)
		require.ErrorIs(t, err, cancellation.ErrInvalidTransition)
		assert.Empty(t, f.store.Cancellations())
		assert.Empty(t, f.store.Instructions())
	})

	t.Run("error: inconsistent amounts fail closed", func(t *testing.T) {
		b := builder.NewSnapshotBuilder()
		snap := b.Build()
		snap.CardCharged = snap.CardCharged.Add(booking.NewMoney(1))
		f := newFixture(t, b)
		f.store.PutBooking(snap)

		_, err := f.commands.Cancel(ctx, f.booking.ID, commands.CancelBookingRequest{}, uuid.New(), f.guest)
		require.ErrorIs(t, err, cancellation.ErrDataIntegrity)
		assert.Empty(t, f.store.Cancellations())
	})

	t.Run("requested time: honoured for support, ignored for guests", func(t *testing.T) {
		tests := []struct {
			name     string
			role     actor.Role
			expected cancellation.Tier
		}{
			{name: "support back-dates to the free window", role: actor.RoleSupport, expected: cancellation.TierFree},
			{name: "guest cannot back-date", role: actor.RoleGuest, expected: cancellation.TierLate},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t, builder.NewSnapshotBuilder())
				by := f.guest
				if tt.role != actor.RoleGuest {
					by = actor.Actor{ID: uuid.New(), Role: tt.role}
				}
				requestedAt := f.booking.PickupAt.Add(-80 * time.Hour)

				result, err := f.commands.Cancel(ctx, f.booking.ID, commands.CancelBookingRequest{RequestedAt: &requestedAt}, uuid.New(), by)
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result.Cancellation.Result.Tier)
			})
		}
	})
}
