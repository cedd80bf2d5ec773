package cancellation

import (
	"time"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/pkg/errs"
)

// Engine computes cancellation outcomes. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	policy Policy
	rules  booking.LifecycleRules
}

func NewEngine(policy Policy, rules booking.LifecycleRules) *Engine {
	return &Engine{policy: policy, rules: rules}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

func (e *Engine) LifecycleRules() booking.LifecycleRules {
	return e.rules
}

func (e *Engine) Lifecycle(s booking.Snapshot, at time.Time) booking.LifecycleState {
	return booking.ResolveLifecycle(s, at, e.rules)
}

// Quote evaluates cancelling s at cancelAt. Nothing is returned unless every
// check passes. The lifecycle check runs before the timing check so a
// terminal booking always reports ErrInvalidTransition.
func (e *Engine) Quote(s booking.Snapshot, cancelAt time.Time) (RefundResult, error) {
	state := e.Lifecycle(s, cancelAt)
	if !state.AllowsCancellation() {
		return RefundResult{}, errs.Markf(ErrInvalidTransition, "booking %s is %s", s.Code, state)
	}
	// ISSUES and ON_HOLD outrank ACTIVE and COMPLETED, so the trip signals are
	// checked directly.
	if s.TripStartedAt != nil || s.TripEndedAt != nil {
		return RefundResult{}, errs.Markf(ErrInvalidTransition, "booking %s trip has already started (%s)", s.Code, state)
	}

	if err := checkTiming(s, cancelAt); err != nil {
		return RefundResult{}, err
	}

	validation, err := checkAmounts(s)
	if err != nil {
		return RefundResult{}, err
	}

	quote := e.policy.Resolve(s.PickupAt, cancelAt, s.Subtotal)

	dist, err := Distribute(DistributionInput{
		Subtotal:          s.Subtotal,
		Penalty:           quote.Penalty,
		Credits:           s.CreditsApplied,
		Bonus:             s.BonusApplied,
		Card:              s.CardContribution(),
		ValidationCharge:  validation,
		Deposit:           s.Deposit,
		DepositFromWallet: s.DepositFromWallet,
		DepositFromCard:   s.DepositFromCard,
	})
	if err != nil {
		return RefundResult{}, err
	}

	result := RefundResult{
		BookingID:              s.ID,
		RefundAmount:           quote.Refund,
		PenaltyAmount:          quote.Penalty,
		Subtotal:               s.Subtotal,
		NonRefundableFees:      s.NonRefundableFees(),
		Taxes:                  s.Taxes,
		CreditsRestored:        dist.CreditsRestored,
		BonusRestored:          dist.BonusRestored,
		CardRefund:             dist.CardRefund,
		ValidationChargeRefund: dist.ValidationChargeRefund,
		Deposit:                s.Deposit,
		DepositFromWallet:      dist.DepositFromWallet,
		DepositFromCard:        dist.DepositFromCard,
		TotalReturnedToCard:    booking.Sum(dist.CardRefund, dist.ValidationChargeRefund, dist.DepositFromCard),
		PenaltyFromCredits:     dist.PenaltyFromCredits,
		PenaltyFromBonus:       dist.PenaltyFromBonus,
		PenaltyFromCard:        dist.PenaltyFromCard,
		Tier:                   quote.Tier,
		TierLabel:              quote.Tier.Label(),
		PenaltyBasisPoints:     quote.PenaltyBasisPoints,
		HoursBeforePickup:      quote.Remaining.Hours(),
		LifecycleState:         state,
		CancelAt:               cancelAt,
	}
	if err := result.Check(); err != nil {
		return RefundResult{}, err
	}
	return result, nil
}

func checkTiming(s booking.Snapshot, cancelAt time.Time) error {
	if cancelAt.IsZero() {
		return errs.Markf(ErrTimingOutOfRange, "cancellation instant is required")
	}
	if !s.CreatedAt.IsZero() && cancelAt.Before(s.CreatedAt) {
		return errs.Markf(ErrTimingOutOfRange, "cancellation at %s precedes booking creation at %s",
			cancelAt.Format(time.RFC3339), s.CreatedAt.Format(time.RFC3339))
	}
	if !s.ReturnAt.IsZero() && cancelAt.After(s.ReturnAt) {
		return errs.Markf(ErrTimingOutOfRange, "cancellation at %s is after the rental returned at %s",
			cancelAt.Format(time.RFC3339), s.ReturnAt.Format(time.RFC3339))
	}
	return nil
}

// checkAmounts reconciles the stored amounts and returns the validation charge
// held on the card, if any.
func checkAmounts(s booking.Snapshot) (booking.Money, error) {
	zero := booking.NewMoney(0)
	named := []struct {
		name  string
		value booking.Money
	}{
		{"daily rate", s.DailyRate},
		{"subtotal", s.Subtotal},
		{"service fee", s.ServiceFee},
		{"insurance fee", s.InsuranceFee},
		{"delivery fee", s.DeliveryFee},
		{"taxes", s.Taxes},
		{"total", s.Total},
		{"deposit", s.Deposit},
		{"credits applied", s.CreditsApplied},
		{"bonus applied", s.BonusApplied},
		{"card charged", s.CardCharged},
		{"deposit from wallet", s.DepositFromWallet},
		{"deposit from card", s.DepositFromCard},
	}
	for _, n := range named {
		if n.value.IsNegative() {
			return zero, errs.Markf(ErrDataIntegrity, "%s is negative: %s", n.name, n.value)
		}
	}

	if s.RentalDays < 0 {
		return zero, errs.Markf(ErrDataIntegrity, "rental days is negative: %d", s.RentalDays)
	}
	if !s.DailyRate.IsZero() {
		expected := booking.NewMoney(s.DailyRate.Cents() * int64(s.RentalDays))
		if !expected.Equal(s.Subtotal) {
			return zero, errs.Markf(ErrDataIntegrity, "daily rate %s x %d days != subtotal %s", s.DailyRate, s.RentalDays, s.Subtotal)
		}
	}

	total := booking.Sum(s.Subtotal, s.NonRefundableFees(), s.Taxes)
	if !total.Equal(s.Total) {
		return zero, errs.Markf(ErrDataIntegrity, "total %s != subtotal + fees + taxes %s", s.Total, total)
	}

	discounts := s.CreditsApplied.Add(s.BonusApplied)
	if discounts.GreaterThan(s.Subtotal) {
		return zero, errs.Markf(ErrDataIntegrity, "credits and bonus %s exceed subtotal %s", discounts, s.Subtotal)
	}

	owedByCard := s.Total.Sub(discounts)
	if !s.MinimumValidationCharge {
		if !s.CardCharged.Equal(owedByCard) {
			return zero, errs.Markf(ErrDataIntegrity, "card charged %s != amount owed by card %s", s.CardCharged, owedByCard)
		}
		return zero, nil
	}

	if !s.CardContribution().IsZero() {
		return zero, errs.Markf(ErrDataIntegrity, "validation charge flagged but card funded %s of subtotal", s.CardContribution())
	}
	validation := s.CardCharged.Sub(owedByCard)
	if !validation.GreaterThan(zero) {
		return zero, errs.Markf(ErrDataIntegrity, "validation charge flagged but card charged %s covers only %s", s.CardCharged, owedByCard)
	}
	return validation, nil
}
