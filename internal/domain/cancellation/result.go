package cancellation

import (
	"time"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/pkg/errs"

	"github.com/google/uuid"
)

// RefundResult is the full reconciliation for one cancellation. Presentation
// and payment instructions both read from it; nothing recomputes the split.
type RefundResult struct {
	BookingID uuid.UUID

	RefundAmount      booking.Money
	PenaltyAmount     booking.Money
	Subtotal          booking.Money
	NonRefundableFees booking.Money
	Taxes             booking.Money

	CreditsRestored        booking.Money
	BonusRestored          booking.Money
	CardRefund             booking.Money
	ValidationChargeRefund booking.Money

	Deposit                   booking.Money
	DepositFromWallet         booking.Money
	DepositFromCard           booking.Money
	DepositWithheldFromWallet booking.Money
	DepositWithheldFromCard   booking.Money

	// TotalReturnedToCard = card refund + validation charge + card-funded deposit.
	TotalReturnedToCard booking.Money

	PenaltyFromCredits booking.Money
	PenaltyFromBonus   booking.Money
	PenaltyFromCard    booking.Money

	Tier               Tier
	TierLabel          string
	PenaltyBasisPoints int64
	HoursBeforePickup  float64
	LifecycleState     booking.LifecycleState
	CancelAt           time.Time
}

func (r RefundResult) DepositWithheld() booking.Money {
	return r.DepositWithheldFromWallet.Add(r.DepositWithheldFromCard)
}

// WithDepositWithheld applies a claim override: amount of the deposit is kept,
// taken from the card-funded portion first and then from the wallet. Calling it
// again replaces the previous withholding.
func (r RefundResult) WithDepositWithheld(amount booking.Money) (RefundResult, error) {
	if amount.IsNegative() {
		return RefundResult{}, errs.Markf(ErrInvalidWithholding, "withheld amount is negative: %s", amount)
	}
	if amount.GreaterThan(r.Deposit) {
		return RefundResult{}, errs.Markf(ErrInvalidWithholding, "withheld %s exceeds deposit %s", amount, r.Deposit)
	}

	fundedByCard := r.DepositFromCard.Add(r.DepositWithheldFromCard)
	fundedByWallet := r.DepositFromWallet.Add(r.DepositWithheldFromWallet)

	fromCard := booking.MinMoney(amount, fundedByCard)
	fromWallet := amount.Sub(fromCard)

	out := r
	out.DepositWithheldFromCard = fromCard
	out.DepositWithheldFromWallet = fromWallet
	out.DepositFromCard = fundedByCard.Sub(fromCard)
	out.DepositFromWallet = fundedByWallet.Sub(fromWallet)
	out.TotalReturnedToCard = booking.Sum(out.CardRefund, out.ValidationChargeRefund, out.DepositFromCard)
	return out, nil
}

// Check verifies every conservation rule the result must satisfy.
func (r RefundResult) Check() error {
	if !r.RefundAmount.Add(r.PenaltyAmount).Equal(r.Subtotal) {
		return errs.Markf(ErrDataIntegrity, "refund %s + penalty %s != subtotal %s", r.RefundAmount, r.PenaltyAmount, r.Subtotal)
	}
	sources := booking.Sum(
		r.CreditsRestored, r.BonusRestored, r.CardRefund,
		r.PenaltyFromCredits, r.PenaltyFromBonus, r.PenaltyFromCard,
	)
	if !sources.Equal(r.Subtotal) {
		return errs.Markf(ErrDataIntegrity, "source breakdown %s != subtotal %s", sources, r.Subtotal)
	}
	deposit := booking.Sum(r.DepositFromWallet, r.DepositFromCard, r.DepositWithheld())
	if !deposit.Equal(r.Deposit) {
		return errs.Markf(ErrDataIntegrity, "deposit breakdown %s != deposit %s", deposit, r.Deposit)
	}
	return nil
}
