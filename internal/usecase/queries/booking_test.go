//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"booking-reconciler/internal/domain/actor"
	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/pkg/clock"
	"booking-reconciler/internal/usecase/queries"
	"booking-reconciler/tests/common/builder"
	"booking-reconciler/tests/common/memuow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, snap booking.Snapshot, now time.Time) (queries.BookingQueries, *memuow.Store) {
	t.Helper()
	clk := clock.NewMockClock(now)
	store := memuow.New(clk.Now)
	store.PutBooking(snap)
	engine := cancellation.NewEngine(cancellation.DefaultPolicy(builder.PolicyZone()), booking.DefaultLifecycleRules())
	return queries.NewBookingQueries(store, engine, clk), store
}

func TestBookingQueries_Lifecycle(t *testing.T) {
	ctx := context.Background()
	snap := builder.NewSnapshotBuilder().Build()
	guest := actor.Actor{ID: snap.GuestID, Role: actor.RoleGuest}

	t.Run("defaults to the clock", func(t *testing.T) {
		now := snap.PickupAt.Add(-time.Hour)
		q, _ := setup(t, snap, now)

		view, err := q.Lifecycle(ctx, snap.ID, nil, guest)
		require.NoError(t, err)
		assert.Equal(t, booking.StateConfirmed, view.State)
		assert.True(t, view.AllowsCancellation)
		assert.True(t, view.EvaluatedAt.Equal(now))
	})

	t.Run("explicit instant", func(t *testing.T) {
		q, _ := setup(t, snap, snap.PickupAt)
		afterReturn := snap.ReturnAt.Add(time.Hour)

		ended := builder.NewSnapshotBuilder().AsEnded().Build()
		q2, _ := setup(t, ended, snap.PickupAt)

		view, err := q.Lifecycle(ctx, snap.ID, &afterReturn, guest)
		require.NoError(t, err)
		assert.Equal(t, booking.StateConfirmed, view.State)

		view, err = q2.Lifecycle(ctx, ended.ID, &afterReturn, guest)
		require.NoError(t, err)
		assert.Equal(t, booking.StateCompleted, view.State)
		assert.False(t, view.AllowsCancellation)
	})

	t.Run("staff may view any booking, other guests may not", func(t *testing.T) {
		q, _ := setup(t, snap, snap.CreatedAt)

		_, err := q.Lifecycle(ctx, snap.ID, nil, actor.Actor{ID: uuid.New(), Role: actor.RoleSupport})
		require.NoError(t, err)

		_, err = q.Lifecycle(ctx, snap.ID, nil, actor.Actor{ID: uuid.New(), Role: actor.RoleGuest})
		require.ErrorIs(t, err, queries.ErrForbidden)
	})

	t.Run("unknown booking", func(t *testing.T) {
		q, _ := setup(t, snap, snap.CreatedAt)

		_, err := q.Lifecycle(ctx, uuid.New(), nil, guest)
		require.ErrorIs(t, err, queries.ErrBookingNotFound)
	})
}

func TestBookingQueries_QuoteCancellation(t *testing.T) {
	ctx := context.Background()
	snap := builder.NewSnapshotBuilder().WithFunding(10000, 0).WithDeposit(0, 20000).Build()
	guest := actor.Actor{ID: snap.GuestID, Role: actor.RoleGuest}

	t.Run("preview writes nothing", func(t *testing.T) {
		q, store := setup(t, snap, snap.PickupAt.Add(-30*time.Hour))

		quote, err := q.QuoteCancellation(ctx, snap.ID, nil, guest)
		require.NoError(t, err)

		assert.Equal(t, cancellation.TierModerate, quote.Result.Tier)
		assert.Equal(t, int64(22500), quote.Result.RefundAmount.Cents())
		assert.Len(t, quote.Instructions, 3)
		assert.Equal(t, booking.StatusConfirmed, store.Booking(snap.ID).Status)
		assert.Empty(t, store.Cancellations())
	})

	t.Run("instant outside the booking window", func(t *testing.T) {
		q, _ := setup(t, snap, snap.CreatedAt)
		before := snap.CreatedAt.Add(-time.Minute)

		_, err := q.QuoteCancellation(ctx, snap.ID, &before, guest)
		require.ErrorIs(t, err, cancellation.ErrTimingOutOfRange)
	})

	t.Run("cancellation not found before cancelling", func(t *testing.T) {
		q, _ := setup(t, snap, snap.CreatedAt)

		_, err := q.GetCancellation(ctx, snap.ID, guest)
		require.ErrorIs(t, err, queries.ErrCancellationNotFound)
	})
}
