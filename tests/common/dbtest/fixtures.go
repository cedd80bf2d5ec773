//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"booking-reconciler/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// InsertBooking writes the snapshot into bookings and booking_payments as the
// booking system of record would.
func InsertBooking(t *testing.T, db DBLike, s booking.Snapshot) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	_, err := db.Exec(ctx, `
		INSERT INTO bookings (
		    id, code, guest_id, status, verification_status, payment_status, trip_status, open_claim,
		    documents_submitted_at, trip_started_at, trip_ended_at, cancelled_at,
		    created_at, pickup_at, return_at, rental_days,
		    daily_rate_cents, subtotal_cents, service_fee_cents, insurance_fee_cents,
		    delivery_fee_cents, taxes_cents, total_cents, deposit_cents
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		          $17, $18, $19, $20, $21, $22, $23, $24)`,
		s.ID, s.Code, s.GuestID,
		s.Status.String(), s.Verification.String(), s.Payment.String(), s.Trip.String(), s.OpenClaim,
		s.DocumentsSubmittedAt, s.TripStartedAt, s.TripEndedAt, s.CancelledAt,
		s.CreatedAt, s.PickupAt, s.ReturnAt, s.RentalDays,
		s.DailyRate.Cents(), s.Subtotal.Cents(), s.ServiceFee.Cents(), s.InsuranceFee.Cents(),
		s.DeliveryFee.Cents(), s.Taxes.Cents(), s.Total.Cents(), s.Deposit.Cents(),
	)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO booking_payments (
		    booking_id, credits_applied_cents, bonus_applied_cents, card_charged_cents,
		    deposit_from_wallet_cents, deposit_from_card_cents, card_brand, card_last4,
		    minimum_validation_charge
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.CreditsApplied.Cents(), s.BonusApplied.Cents(), s.CardCharged.Cents(),
		s.DepositFromWallet.Cents(), s.DepositFromCard.Cents(), s.CardBrand, s.CardLast4,
		s.MinimumValidationCharge,
	)
	require.NoError(t, err)

	return s.ID
}

func BookingStatus(t *testing.T, db DBLike, id uuid.UUID) string {
	t.Helper()

	var status string
	err := db.QueryRow(context.Background(), "SELECT status FROM bookings WHERE id = $1", id).Scan(&status)
	require.NoError(t, err)
	return status
}

// InstructionStatuses maps instruction kind to its outbox status for one booking.
func InstructionStatuses(t *testing.T, db DBLike, bookingID uuid.UUID) map[string]string {
	t.Helper()

	rows, err := db.Query(context.Background(),
		"SELECT kind, status FROM refund_instructions WHERE booking_id = $1", bookingID)
	require.NoError(t, err)
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var kind, status string
		require.NoError(t, rows.Scan(&kind, &status))
		out[kind] = status
	}
	require.NoError(t, rows.Err())
	return out
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('atlas_schema_revisions')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
