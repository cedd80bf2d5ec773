package cancellation

import (
	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

type DistributionInput struct {
	Subtotal booking.Money
	Penalty  booking.Money

	// Contributions to the subtotal. Card is whatever credits and bonus did not cover.
	Credits booking.Money
	Bonus   booking.Money
	Card    booking.Money

	// ValidationCharge is a nominal card authorization outside the subtotal.
	ValidationCharge booking.Money

	Deposit           booking.Money
	DepositFromWallet booking.Money
	DepositFromCard   booking.Money
}

type Distribution struct {
	CreditsRestored        booking.Money
	BonusRestored          booking.Money
	CardRefund             booking.Money
	ValidationChargeRefund booking.Money

	PenaltyFromCredits booking.Money
	PenaltyFromBonus   booking.Money
	PenaltyFromCard    booking.Money

	DepositFromWallet booking.Money
	DepositFromCard   booking.Money
}

// Distribute spreads the penalty across the funding sources in proportion to
// what each contributed to the subtotal. Largest-remainder rounding keeps the
// sum exact; equal remainders go to credits, then bonus, then card.
func Distribute(in DistributionInput) (Distribution, error) {
	if err := in.validate(); err != nil {
		return Distribution{}, err
	}

	contributions := []booking.Money{in.Credits, in.Bonus, in.Card}
	shares := allocate(in.Penalty, in.Subtotal, contributions)

	return Distribution{
		CreditsRestored:        in.Credits.Sub(shares[0]),
		BonusRestored:          in.Bonus.Sub(shares[1]),
		CardRefund:             in.Card.Sub(shares[2]),
		ValidationChargeRefund: in.ValidationCharge,
		PenaltyFromCredits:     shares[0],
		PenaltyFromBonus:       shares[1],
		PenaltyFromCard:        shares[2],
		DepositFromWallet:      in.DepositFromWallet,
		DepositFromCard:        in.DepositFromCard,
	}, nil
}

func (in DistributionInput) validate() error {
	named := []struct {
		name  string
		value booking.Money
	}{
		{"subtotal", in.Subtotal},
		{"penalty", in.Penalty},
		{"credits", in.Credits},
		{"bonus", in.Bonus},
		{"card", in.Card},
		{"validation charge", in.ValidationCharge},
		{"deposit", in.Deposit},
		{"deposit from wallet", in.DepositFromWallet},
		{"deposit from card", in.DepositFromCard},
	}
	for _, n := range named {
		if n.value.IsNegative() {
			return errs.Markf(ErrDataIntegrity, "%s is negative: %s", n.name, n.value)
		}
	}

	if in.Penalty.GreaterThan(in.Subtotal) {
		return errs.Markf(ErrDataIntegrity, "penalty %s exceeds subtotal %s", in.Penalty, in.Subtotal)
	}
	funded := booking.Sum(in.Credits, in.Bonus, in.Card)
	if !funded.Equal(in.Subtotal) {
		return errs.Markf(ErrDataIntegrity, "funding mix %s does not match subtotal %s", funded, in.Subtotal)
	}
	if !in.ValidationCharge.IsZero() && !in.Card.IsZero() {
		return errs.Markf(ErrDataIntegrity, "validation charge present while card funded %s of subtotal", in.Card)
	}
	deposit := in.DepositFromWallet.Add(in.DepositFromCard)
	if !deposit.Equal(in.Deposit) {
		return errs.Markf(ErrDataIntegrity, "deposit split %s does not match deposit %s", deposit, in.Deposit)
	}
	return nil
}

// allocate returns floor(total*c/base) per contribution, then hands the
// leftover units to the largest fractional remainders.
func allocate(total, base booking.Money, contributions []booking.Money) []booking.Money {
	shares := make([]booking.Money, len(contributions))
	if base.IsZero() || total.IsZero() {
		return shares
	}

	t := decimal.NewFromInt(total.Cents())
	b := decimal.NewFromInt(base.Cents())
	remainders := make([]decimal.Decimal, len(contributions))
	allocated := booking.NewMoney(0)

	for i, c := range contributions {
		q, r := t.Mul(decimal.NewFromInt(c.Cents())).QuoRem(b, 0)
		shares[i] = booking.NewMoney(q.IntPart())
		remainders[i] = r
		allocated = allocated.Add(shares[i])
	}

	leftover := total.Sub(allocated).Cents()
	for ; leftover > 0; leftover-- {
		best := -1
		for i, r := range remainders {
			if !r.IsPositive() {
				continue
			}
			if best < 0 || r.GreaterThan(remainders[best]) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		shares[best] = shares[best].Add(booking.NewMoney(1))
		remainders[best] = decimal.Zero
	}
	return shares
}
