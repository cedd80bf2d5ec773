//go:build unit

package readstore

import (
	"context"
	"reflect"
	"testing"
	"time"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/infra"
	"booking-reconciler/tests/common/builder"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDBTX struct {
	mock.Mock
}

func (m *MockDBTX) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	called := m.Called(ctx, sql, args)
	return called.Get(0).(pgconn.CommandTag), called.Error(1)
}

func (m *MockDBTX) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	called := m.Called(ctx, sql, args)
	return nil, called.Error(1)
}

func (m *MockDBTX) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	called := m.Called(ctx, sql, args)
	return called.Get(0).(pgx.Row)
}

// valuesRow assigns values to Scan destinations positionally.
type valuesRow struct {
	values []any
	err    error
}

func (r valuesRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return pgx.ErrTooManyRows
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

func snapshotValues(s booking.Snapshot) []any {
	ts := func(t *time.Time) pgtype.Timestamptz {
		if t == nil {
			return pgtype.Timestamptz{}
		}
		return pgtype.Timestamptz{Time: *t, Valid: true}
	}

	return []any{
		s.ID, s.Code, s.GuestID,
		s.Status.String(), s.Verification.String(), s.Payment.String(), s.Trip.String(), s.OpenClaim,
		ts(s.DocumentsSubmittedAt), ts(s.TripStartedAt), ts(s.TripEndedAt), ts(s.CancelledAt),
		s.CreatedAt, s.PickupAt, s.ReturnAt, s.RentalDays,
		s.DailyRate.Cents(), s.Subtotal.Cents(), s.ServiceFee.Cents(), s.InsuranceFee.Cents(),
		s.DeliveryFee.Cents(), s.Taxes.Cents(), s.Total.Cents(), s.Deposit.Cents(),
		s.CreditsApplied.Cents(), s.BonusApplied.Cents(), s.CardCharged.Cents(),
		s.DepositFromWallet.Cents(), s.DepositFromCard.Cents(),
		s.CardBrand, s.CardLast4, s.MinimumValidationCharge,
	}
}

func TestBookingSnapshot(t *testing.T) {
	snap := builder.NewSnapshotBuilder().WithFunding(2000, 500).WithDeposit(1000, 4000).AsStarted().Build()

	expired := snap
	expired.Verification = booking.VerificationStatus("expired")
	archived := snap
	archived.Status = booking.Status("archived")
	archived.Trip = booking.TripStatus("")

	tests := []struct {
		name     string
		row      valuesRow
		want     booking.Snapshot
		wantKind infra.RepositoryErrorKind
	}{
		{
			name: "success",
			row:  valuesRow{values: snapshotValues(snap)},
			want: snap,
		},
		{
			name: "unknown verification value is passed through",
			row:  valuesRow{values: snapshotValues(expired)},
			want: expired,
		},
		{
			name: "unknown status and empty trip are passed through",
			row:  valuesRow{values: snapshotValues(archived)},
			want: archived,
		},
		{
			name:     "booking not found",
			row:      valuesRow{err: pgx.ErrNoRows},
			wantKind: infra.KindNotFound,
		},
		{
			name:     "database error",
			row:      valuesRow{err: assert.AnError},
			wantKind: infra.KindDBFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := new(MockDBTX)
			mockDB.On("QueryRow", mock.Anything, selectBookingSnapshot, []any{snap.ID}).Return(tt.row)

			got, err := NewBookingReadStore(mockDB).Snapshot(context.Background(), snap.ID)

			switch {
			case tt.wantKind != "":
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			mockDB.AssertExpectations(t)
		})
	}
}

func TestBookingSnapshotForUpdate(t *testing.T) {
	snap := builder.NewSnapshotBuilder().Build()

	mockDB := new(MockDBTX)
	mockDB.On("QueryRow", mock.Anything, selectBookingSnapshot+"\nFOR UPDATE OF b", []any{snap.ID}).
		Return(valuesRow{values: snapshotValues(snap)})

	got, err := NewBookingReadStore(mockDB).SnapshotForUpdate(context.Background(), snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, snap.GuestID, got.GuestID)
	mockDB.AssertExpectations(t)
}
