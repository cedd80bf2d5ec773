package readstore

import (
	"context"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/infra"
	"booking-reconciler/internal/infra/db"
	"booking-reconciler/internal/pkg/pgconv"
	"booking-reconciler/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const selectCancellation = `
SELECT
    id, booking_id, actor_id, reason, cancel_at, lifecycle_state,
    tier, tier_label, penalty_basis_points, hours_before_pickup,
    subtotal_cents, refund_cents, penalty_cents, non_refundable_fees_cents, taxes_cents,
    credits_restored_cents, bonus_restored_cents, card_refund_cents, validation_charge_refund_cents,
    deposit_cents, deposit_from_wallet_cents, deposit_from_card_cents,
    deposit_withheld_wallet_cents, deposit_withheld_card_cents, total_returned_to_card_cents,
    penalty_from_credits_cents, penalty_from_bonus_cents, penalty_from_card_cents,
    created_at, updated_at
FROM booking_cancellations`

type CancellationReadStore struct {
	db db.DBTX
}

func NewCancellationReadStore(db db.DBTX) *CancellationReadStore {
	return &CancellationReadStore{db: db}
}

func (r *CancellationReadStore) ByBookingID(ctx context.Context, bookingID uuid.UUID) (*shared.StoredCancellation, error) {
	c, err := scanCancellation(r.db.QueryRow(ctx, selectCancellation+" WHERE booking_id = $1", bookingID))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cancellation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cancellation by booking ID", err)
	}
	return c, nil
}

func (r *CancellationReadStore) ByID(ctx context.Context, id uuid.UUID) (*shared.StoredCancellation, error) {
	c, err := scanCancellation(r.db.QueryRow(ctx, selectCancellation+" WHERE id = $1", id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cancellation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cancellation by ID", err)
	}
	return c, nil
}

func scanCancellation(row pgx.Row) (*shared.StoredCancellation, error) {
	var (
		c      shared.StoredCancellation
		reason pgtype.Text
		state  string
		tier   string
		cents  [18]int64
	)

	err := row.Scan(
		&c.ID, &c.BookingID, &c.ActorID, &reason, &c.Result.CancelAt, &state,
		&tier, &c.Result.TierLabel, &c.Result.PenaltyBasisPoints, &c.Result.HoursBeforePickup,
		&cents[0], &cents[1], &cents[2], &cents[3], &cents[4],
		&cents[5], &cents[6], &cents[7], &cents[8],
		&cents[9], &cents[10], &cents[11],
		&cents[12], &cents[13], &cents[14],
		&cents[15], &cents[16], &cents[17],
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	res := &c.Result
	res.BookingID = c.BookingID
	res.LifecycleState = booking.LifecycleState(state)
	res.Tier = cancellation.Tier(tier)
	targets := []*booking.Money{
		&res.Subtotal, &res.RefundAmount, &res.PenaltyAmount, &res.NonRefundableFees, &res.Taxes,
		&res.CreditsRestored, &res.BonusRestored, &res.CardRefund, &res.ValidationChargeRefund,
		&res.Deposit, &res.DepositFromWallet, &res.DepositFromCard,
		&res.DepositWithheldFromWallet, &res.DepositWithheldFromCard, &res.TotalReturnedToCard,
		&res.PenaltyFromCredits, &res.PenaltyFromBonus, &res.PenaltyFromCard,
	}
	for i, dst := range targets {
		*dst = pgconv.MoneyFromCents(cents[i])
	}
	c.Reason = pgconv.StringPtrFromPgtype(reason)
	return &c, nil
}
