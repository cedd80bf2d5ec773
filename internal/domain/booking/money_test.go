//go:build unit

package booking_test

import (
	"testing"

	"booking-reconciler/internal/domain/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
		errIs error
	}{
		{name: "whole amount", input: "300", want: 30000},
		{name: "two decimals", input: "149.99", want: 14999},
		{name: "one decimal", input: "0.5", want: 50},
		{name: "zero", input: "0.00", want: 0},
		{name: "three decimals are rejected", input: "1.005", errIs: booking.ErrInvalidMoney},
		{name: "negative is rejected", input: "-1.00", errIs: booking.ErrInvalidMoney},
		{name: "garbage is rejected", input: "12abc", errIs: booking.ErrInvalidMoney},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := booking.ParseMoney(tt.input)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, actual.Cents())
		})
	}
}

func TestMoney(t *testing.T) {
	t.Run("string renders two decimals", func(t *testing.T) {
		assert.Equal(t, "300.00", booking.NewMoney(30000).String())
		assert.Equal(t, "0.01", booking.NewMoney(1).String())
	})

	t.Run("arithmetic", func(t *testing.T) {
		a := booking.NewMoney(12000)
		b := booking.NewMoney(8000)

		assert.Equal(t, int64(20000), a.Add(b).Cents())
		assert.Equal(t, int64(4000), a.Sub(b).Cents())
		assert.True(t, b.Sub(a).IsNegative())
		assert.Equal(t, int64(20100), booking.Sum(a, b, booking.NewMoney(100)).Cents())
		assert.Equal(t, b, booking.MinMoney(a, b))
	})

	t.Run("negative cents are rejected", func(t *testing.T) {
		_, err := booking.NewMoneyFromCents(-1)
		require.ErrorIs(t, err, booking.ErrInvalidMoney)
	})
}
