package booking

import (
	"errors"

	"booking-reconciler/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var ErrInvalidMoney = errors.New("invalid money amount")

var hundred = decimal.NewFromInt(100)

// Money is a currency amount in minor units (cents).
type Money struct {
	cents int64
}

func NewMoney(cents int64) Money {
	return Money{cents: cents}
}

func NewMoneyFromCents(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, errs.Markf(ErrInvalidMoney, "money cannot be negative: %d", cents)
	}
	return Money{cents: cents}, nil
}

// ParseMoney reads a major-unit amount such as "300.00".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.Mark(errs.Wrap(err, "parse money"), ErrInvalidMoney)
	}
	return MoneyFromDecimal(d)
}

func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, errs.Markf(ErrInvalidMoney, "money cannot be negative: %s", d.String())
	}
	cents := d.Mul(hundred)
	if !cents.Equal(cents.Truncate(0)) {
		return Money{}, errs.Markf(ErrInvalidMoney, "more than two decimal places: %s", d.String())
	}
	return Money{cents: cents.IntPart()}, nil
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

func (m Money) Sub(other Money) Money {
	return Money{cents: m.cents - other.cents}
}

func (m Money) IsZero() bool {
	return m.cents == 0
}

func (m Money) IsNegative() bool {
	return m.cents < 0
}

func (m Money) Equal(other Money) bool {
	return m.cents == other.cents
}

func (m Money) GreaterThan(other Money) bool {
	return m.cents > other.cents
}

func (m Money) LessThan(other Money) bool {
	return m.cents < other.cents
}

func Sum(amounts ...Money) Money {
	var total int64
	for _, a := range amounts {
		total += a.cents
	}
	return Money{cents: total}
}

func MinMoney(a, b Money) Money {
	if a.cents < b.cents {
		return a
	}
	return b
}
