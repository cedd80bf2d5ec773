package cancellation

import (
	"time"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const FullPenaltyBasisPoints = 10000

type Tier string

const (
	TierFree     Tier = "free"
	TierModerate Tier = "moderate"
	TierLate     Tier = "late"
	TierNoRefund Tier = "no_refund"
)

func (t Tier) String() string {
	return string(t)
}

func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierModerate, TierLate, TierNoRefund:
		return true
	default:
		return false
	}
}

func (t Tier) Label() string {
	switch t {
	case TierFree:
		return "Free cancellation"
	case TierModerate:
		return "Moderate cancellation fee"
	case TierLate:
		return "Late cancellation fee"
	case TierNoRefund:
		return "No refund"
	default:
		return string(t)
	}
}

// TierRule applies when at least MinBeforePickup remains before pickup.
type TierRule struct {
	Tier               Tier
	MinBeforePickup    time.Duration
	PenaltyBasisPoints int64
}

// Policy is an ordered step function from time remaining to penalty.
// Anything at or below zero remaining, or below the last rule, is no-refund.
type Policy struct {
	rules    []TierRule
	location *time.Location
}

func DefaultRules() []TierRule {
	return []TierRule{
		{Tier: TierFree, MinBeforePickup: 72 * time.Hour, PenaltyBasisPoints: 0},
		{Tier: TierModerate, MinBeforePickup: 24 * time.Hour, PenaltyBasisPoints: 2500},
		{Tier: TierLate, MinBeforePickup: 0, PenaltyBasisPoints: 5000},
	}
}

func DefaultPolicy(loc *time.Location) Policy {
	p, err := NewPolicy(loc, DefaultRules())
	if err != nil {
		panic(err)
	}
	return p
}

func NewPolicy(loc *time.Location, rules []TierRule) (Policy, error) {
	if loc == nil {
		return Policy{}, errs.Markf(ErrInvalidPolicy, "policy location is required")
	}
	if len(rules) == 0 {
		return Policy{}, errs.Markf(ErrInvalidPolicy, "at least one tier rule is required")
	}

	seen := make(map[Tier]bool, len(rules))
	for i, r := range rules {
		if !r.Tier.IsValid() {
			return Policy{}, errs.Markf(ErrInvalidPolicy, "unknown tier %q", r.Tier)
		}
		if r.Tier == TierNoRefund {
			return Policy{}, errs.Markf(ErrInvalidPolicy, "no_refund is the implicit final tier")
		}
		if seen[r.Tier] {
			return Policy{}, errs.Markf(ErrInvalidPolicy, "duplicate tier %q", r.Tier)
		}
		seen[r.Tier] = true

		if r.MinBeforePickup < 0 {
			return Policy{}, errs.Markf(ErrInvalidPolicy, "tier %q threshold is negative", r.Tier)
		}
		if r.PenaltyBasisPoints < 0 || r.PenaltyBasisPoints > FullPenaltyBasisPoints {
			return Policy{}, errs.Markf(ErrInvalidPolicy, "tier %q penalty out of range: %d", r.Tier, r.PenaltyBasisPoints)
		}
		if r.Tier == TierFree && r.PenaltyBasisPoints != 0 {
			return Policy{}, errs.Markf(ErrInvalidPolicy, "free tier must carry no penalty")
		}
		if i == 0 {
			continue
		}
		prev := rules[i-1]
		if r.MinBeforePickup >= prev.MinBeforePickup {
			return Policy{}, errs.Markf(ErrInvalidPolicy, "tier %q threshold must be below %q", r.Tier, prev.Tier)
		}
		if r.PenaltyBasisPoints < prev.PenaltyBasisPoints {
			return Policy{}, errs.Markf(ErrInvalidPolicy, "tier %q penalty must not be below %q", r.Tier, prev.Tier)
		}
	}

	copied := make([]TierRule, len(rules))
	copy(copied, rules)
	return Policy{rules: copied, location: loc}, nil
}

func (p Policy) Location() *time.Location {
	return p.location
}

func (p Policy) Rules() []TierRule {
	out := make([]TierRule, len(p.rules))
	copy(out, p.rules)
	return out
}

type TierQuote struct {
	Tier               Tier
	PenaltyBasisPoints int64
	Remaining          time.Duration
	Refund             booking.Money
	Penalty            booking.Money
}

// Remaining measures pickupAt - cancelAt on the policy's wall clock, so a
// daylight-saving shift between the two instants does not change the result.
func (p Policy) Remaining(pickupAt, cancelAt time.Time) time.Duration {
	return wallClock(pickupAt, p.location).Sub(wallClock(cancelAt, p.location))
}

// Resolve picks the tier for the given instants and splits subtotal into
// refund and penalty. Thresholds are inclusive.
func (p Policy) Resolve(pickupAt, cancelAt time.Time, subtotal booking.Money) TierQuote {
	remaining := p.Remaining(pickupAt, cancelAt)

	tier, bp := TierNoRefund, int64(FullPenaltyBasisPoints)
	if remaining > 0 {
		for _, r := range p.rules {
			if remaining >= r.MinBeforePickup {
				tier, bp = r.Tier, r.PenaltyBasisPoints
				break
			}
		}
	}

	refund := refundFor(subtotal, bp)
	return TierQuote{
		Tier:               tier,
		PenaltyBasisPoints: bp,
		Remaining:          remaining,
		Refund:             refund,
		Penalty:            subtotal.Sub(refund),
	}
}

// refundFor rounds half-even; the rounding unit lands on the penalty side
// because penalty is derived as subtotal - refund.
func refundFor(subtotal booking.Money, penaltyBP int64) booking.Money {
	keep := decimal.NewFromInt(FullPenaltyBasisPoints - penaltyBP)
	refund := decimal.NewFromInt(subtotal.Cents()).
		Mul(keep).
		Div(decimal.NewFromInt(FullPenaltyBasisPoints)).
		RoundBank(0)
	return booking.NewMoney(refund.IntPart())
}

func wallClock(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), time.UTC)
}
