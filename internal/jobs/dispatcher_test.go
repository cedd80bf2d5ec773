//go:build unit

package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"booking-reconciler/internal/domain/actor"
	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/jobs"
	"booking-reconciler/internal/pkg/clock"
	"booking-reconciler/internal/pkg/config"
	"booking-reconciler/internal/usecase/commands"
	"booking-reconciler/internal/usecase/shared"
	"booking-reconciler/tests/common/builder"
	"booking-reconciler/tests/common/memuow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	failKinds map[cancellation.InstructionKind]bool
	published []shared.InstructionRecord
}

func (p *recordingPublisher) Publish(_ context.Context, rec shared.InstructionRecord) error {
	if p.failKinds[rec.Instruction.Kind] {
		return errors.New("queue unavailable")
	}
	p.published = append(p.published, rec)
	return nil
}

func cancelledStore(t *testing.T) (*memuow.Store, *clock.MockClock) {
	t.Helper()
	snap := builder.NewSnapshotBuilder().WithFunding(10000, 0).WithDeposit(0, 20000).Build()
	clk := clock.NewMockClock(snap.PickupAt.Add(-10 * time.Hour))
	store := memuow.New(clk.Now)
	store.PutBooking(snap)

	engine := cancellation.NewEngine(cancellation.DefaultPolicy(builder.PolicyZone()), booking.DefaultLifecycleRules())
	cmds := commands.NewCancellationCommands(store, engine, clk)
	_, err := cmds.Cancel(context.Background(), snap.ID, commands.CancelBookingRequest{}, uuid.New(), actor.Actor{ID: snap.GuestID, Role: actor.RoleGuest})
	require.NoError(t, err)
	return store, clk
}

func statuses(store *memuow.Store) map[cancellation.InstructionKind]shared.InstructionStatus {
	out := map[cancellation.InstructionKind]shared.InstructionStatus{}
	for _, rec := range store.Instructions() {
		out[rec.Instruction.Kind] = rec.Status
	}
	return out
}

func TestInstructionDispatcher_RunOnce(t *testing.T) {
	ctx := context.Background()
	cfg := config.DispatcherConfig{BatchSize: 10, MaxAttempts: 2}

	t.Run("publishes every due instruction once", func(t *testing.T) {
		store, clk := cancelledStore(t)
		publisher := &recordingPublisher{}
		dispatcher := jobs.NewInstructionDispatcher(store, publisher, clk, cfg)

		stats, err := dispatcher.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, jobs.DispatchStats{Claimed: 3, Sent: 3}, stats)
		assert.Len(t, publisher.published, 3)

		stats, err = dispatcher.RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.Claimed)
	})

	t.Run("failed publish backs off then gives up", func(t *testing.T) {
		store, clk := cancelledStore(t)
		publisher := &recordingPublisher{failKinds: map[cancellation.InstructionKind]bool{cancellation.InstructionDepositRelease: true}}
		dispatcher := jobs.NewInstructionDispatcher(store, publisher, clk, cfg)

		stats, err := dispatcher.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, jobs.DispatchStats{Claimed: 3, Sent: 2, Retried: 1}, stats)
		assert.Equal(t, shared.InstructionQueued, statuses(store)[cancellation.InstructionDepositRelease])

		// not due yet
		stats, err = dispatcher.RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.Claimed)

		clk.Add(time.Minute)
		stats, err = dispatcher.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, jobs.DispatchStats{Claimed: 1, GaveUp: 1}, stats)
		assert.Equal(t, map[cancellation.InstructionKind]shared.InstructionStatus{
			cancellation.InstructionCardRefund:     shared.InstructionSent,
			cancellation.InstructionCreditRestore:  shared.InstructionSent,
			cancellation.InstructionDepositRelease: shared.InstructionFailed,
		}, statuses(store))
	})
}
