//go:build unit

package cancellation_test

import (
	"testing"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(cents int64) booking.Money {
	return booking.NewMoney(cents)
}

func TestDistribute(t *testing.T) {
	t.Run("splits penalty in proportion to funding", func(t *testing.T) {
		actual, err := cancellation.Distribute(cancellation.DistributionInput{
			Subtotal: money(30000),
			Penalty:  money(15000),
			Credits:  money(10000),
			Card:     money(20000),
		})
		require.NoError(t, err)

		assert.Equal(t, int64(5000), actual.CreditsRestored.Cents())
		assert.Equal(t, int64(5000), actual.PenaltyFromCredits.Cents())
		assert.Equal(t, int64(10000), actual.CardRefund.Cents())
		assert.Equal(t, int64(10000), actual.PenaltyFromCard.Cents())
		assert.True(t, actual.BonusRestored.IsZero())
		assert.True(t, actual.PenaltyFromBonus.IsZero())
	})

	t.Run("leftover cent goes to largest remainder then credits bonus card", func(t *testing.T) {
		tests := []struct {
			name                 string
			in                   cancellation.DistributionInput
			credits, bonus, card int64
		}{
			{
				name:    "equal thirds tie goes to credits",
				in:      cancellation.DistributionInput{Subtotal: money(300), Penalty: money(100), Credits: money(100), Bonus: money(100), Card: money(100)},
				credits: 34, bonus: 33, card: 33,
			},
			{
				name:    "two leftover cents follow tie order",
				in:      cancellation.DistributionInput{Subtotal: money(3), Penalty: money(2), Credits: money(1), Bonus: money(1), Card: money(1)},
				credits: 1, bonus: 1, card: 0,
			},
			{
				name:    "largest remainder beats tie order",
				in:      cancellation.DistributionInput{Subtotal: money(1000), Penalty: money(7), Credits: money(100), Bonus: money(300), Card: money(600)},
				credits: 1, bonus: 2, card: 4,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				actual, err := cancellation.Distribute(tt.in)
				require.NoError(t, err)

				assert.Equal(t, tt.credits, actual.PenaltyFromCredits.Cents())
				assert.Equal(t, tt.bonus, actual.PenaltyFromBonus.Cents())
				assert.Equal(t, tt.card, actual.PenaltyFromCard.Cents())
			})
		}
	})

	t.Run("validation charge is returned on top", func(t *testing.T) {
		actual, err := cancellation.Distribute(cancellation.DistributionInput{
			Subtotal:         money(20000),
			Penalty:          money(10000),
			Credits:          money(12000),
			Bonus:            money(8000),
			ValidationCharge: money(100),
		})
		require.NoError(t, err)

		assert.Equal(t, int64(6000), actual.CreditsRestored.Cents())
		assert.Equal(t, int64(4000), actual.BonusRestored.Cents())
		assert.True(t, actual.CardRefund.IsZero())
		assert.Equal(t, int64(100), actual.ValidationChargeRefund.Cents())
	})

	t.Run("deposit is released in its original split", func(t *testing.T) {
		actual, err := cancellation.Distribute(cancellation.DistributionInput{
			Subtotal:          money(30000),
			Penalty:           money(30000),
			Card:              money(30000),
			Deposit:           money(50000),
			DepositFromWallet: money(20000),
			DepositFromCard:   money(30000),
		})
		require.NoError(t, err)

		assert.Equal(t, int64(20000), actual.DepositFromWallet.Cents())
		assert.Equal(t, int64(30000), actual.DepositFromCard.Cents())
	})

	t.Run("conservation holds across funding mixes", func(t *testing.T) {
		for _, subtotal := range []int64{0, 1, 7, 999, 30000, 1234567} {
			for _, creditsPct := range []int64{0, 13, 50, 100} {
				for _, bonusPct := range []int64{0, 17, 50} {
					if creditsPct+bonusPct > 100 {
						continue
					}
					credits := subtotal * creditsPct / 100
					bonus := subtotal * bonusPct / 100
					card := subtotal - credits - bonus
					for _, penaltyPct := range []int64{0, 25, 33, 50, 100} {
						penalty := subtotal * penaltyPct / 100

						actual, err := cancellation.Distribute(cancellation.DistributionInput{
							Subtotal: money(subtotal),
							Penalty:  money(penalty),
							Credits:  money(credits),
							Bonus:    money(bonus),
							Card:     money(card),
						})
						require.NoError(t, err)

						sum := booking.Sum(
							actual.CreditsRestored, actual.BonusRestored, actual.CardRefund,
							actual.PenaltyFromCredits, actual.PenaltyFromBonus, actual.PenaltyFromCard,
						)
						require.Equal(t, subtotal, sum.Cents())
						require.Equal(t, penalty, booking.Sum(actual.PenaltyFromCredits, actual.PenaltyFromBonus, actual.PenaltyFromCard).Cents())
						require.Equal(t, credits, actual.CreditsRestored.Add(actual.PenaltyFromCredits).Cents())
						require.False(t, actual.CreditsRestored.IsNegative())
						require.False(t, actual.BonusRestored.IsNegative())
						require.False(t, actual.CardRefund.IsNegative())
					}
				}
			}
		}
	})

	t.Run("inconsistent inputs fail closed", func(t *testing.T) {
		tests := []struct {
			name string
			in   cancellation.DistributionInput
		}{
			{
				name: "contributions exceed subtotal",
				in:   cancellation.DistributionInput{Subtotal: money(100), Credits: money(80), Bonus: money(40)},
			},
			{
				name: "contributions short of subtotal",
				in:   cancellation.DistributionInput{Subtotal: money(100), Credits: money(50)},
			},
			{
				name: "negative contribution",
				in:   cancellation.DistributionInput{Subtotal: money(100), Credits: money(120), Card: money(-20)},
			},
			{
				name: "penalty exceeds subtotal",
				in:   cancellation.DistributionInput{Subtotal: money(100), Penalty: money(101), Card: money(100)},
			},
			{
				name: "validation charge while card funded subtotal",
				in:   cancellation.DistributionInput{Subtotal: money(100), Card: money(100), ValidationCharge: money(1)},
			},
			{
				name: "deposit split does not add up",
				in: cancellation.DistributionInput{
					Subtotal: money(100), Card: money(100),
					Deposit: money(500), DepositFromWallet: money(200), DepositFromCard: money(200),
				},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				actual, err := cancellation.Distribute(tt.in)

				require.ErrorIs(t, err, cancellation.ErrDataIntegrity)
				assert.Equal(t, cancellation.Distribution{}, actual)
			})
		}
	})
}
