package repository

import (
	"context"

	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/infra"
	"booking-reconciler/internal/infra/db"
	"booking-reconciler/internal/pkg/pgconv"
	"booking-reconciler/internal/usecase/shared"

	"github.com/google/uuid"
)

const insertCancellation = `
INSERT INTO booking_cancellations (
    booking_id, actor_id, reason, cancel_at, lifecycle_state,
    tier, tier_label, penalty_basis_points, hours_before_pickup,
    subtotal_cents, refund_cents, penalty_cents, non_refundable_fees_cents, taxes_cents,
    credits_restored_cents, bonus_restored_cents, card_refund_cents, validation_charge_refund_cents,
    deposit_cents, deposit_from_wallet_cents, deposit_from_card_cents,
    deposit_withheld_wallet_cents, deposit_withheld_card_cents, total_returned_to_card_cents,
    penalty_from_credits_cents, penalty_from_bonus_cents, penalty_from_card_cents
) VALUES (
    $1, $2, $3, $4, $5,
    $6, $7, $8, $9,
    $10, $11, $12, $13, $14,
    $15, $16, $17, $18,
    $19, $20, $21,
    $22, $23, $24,
    $25, $26, $27
)
RETURNING id`

const updateCancellationDeposit = `
UPDATE booking_cancellations
SET deposit_from_wallet_cents = $2,
    deposit_from_card_cents = $3,
    deposit_withheld_wallet_cents = $4,
    deposit_withheld_card_cents = $5,
    total_returned_to_card_cents = $6,
    updated_at = NOW()
WHERE id = $1`

type CancellationRepository struct {
	db db.DBTX
}

func NewCancellationRepository(db db.DBTX) *CancellationRepository {
	return &CancellationRepository{db: db}
}

func (r *CancellationRepository) Create(ctx context.Context, c shared.NewCancellation) (uuid.UUID, error) {
	res := c.Result
	var id uuid.UUID
	err := r.db.QueryRow(ctx, insertCancellation,
		c.BookingID, c.ActorID, pgconv.StringPtrToPgtype(c.Reason), res.CancelAt, res.LifecycleState.String(),
		res.Tier.String(), res.TierLabel, res.PenaltyBasisPoints, res.HoursBeforePickup,
		res.Subtotal.Cents(), res.RefundAmount.Cents(), res.PenaltyAmount.Cents(),
		res.NonRefundableFees.Cents(), res.Taxes.Cents(),
		res.CreditsRestored.Cents(), res.BonusRestored.Cents(), res.CardRefund.Cents(), res.ValidationChargeRefund.Cents(),
		res.Deposit.Cents(), res.DepositFromWallet.Cents(), res.DepositFromCard.Cents(),
		res.DepositWithheldFromWallet.Cents(), res.DepositWithheldFromCard.Cents(), res.TotalReturnedToCard.Cents(),
		res.PenaltyFromCredits.Cents(), res.PenaltyFromBonus.Cents(), res.PenaltyFromCard.Cents(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create cancellation", err)
	}
	return id, nil
}

func (r *CancellationRepository) UpdateDeposit(ctx context.Context, id uuid.UUID, res cancellation.RefundResult) error {
	tag, err := r.db.Exec(ctx, updateCancellationDeposit, id,
		res.DepositFromWallet.Cents(), res.DepositFromCard.Cents(),
		res.DepositWithheldFromWallet.Cents(), res.DepositWithheldFromCard.Cents(),
		res.TotalReturnedToCard.Cents(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update cancellation deposit", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("cancellation not found", nil, infra.KindNotFound)
	}
	return nil
}
