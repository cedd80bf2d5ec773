//go:build unit

package cancellation_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	t.Run("four tier table", func(t *testing.T) {
		data := []byte(`
tiers:
  - tier: free
    min_hours: 72
    penalty_percent: 0
  - tier: moderate
    min_hours: 24
    penalty_percent: 25
  - tier: late
    min_hours: 12
    penalty_percent: 50
`)
		policy, err := cancellation.ParsePolicy(data, builder.PolicyZone())
		require.NoError(t, err)

		assert.Equal(t, []cancellation.TierRule{
			{Tier: cancellation.TierFree, MinBeforePickup: 72 * time.Hour, PenaltyBasisPoints: 0},
			{Tier: cancellation.TierModerate, MinBeforePickup: 24 * time.Hour, PenaltyBasisPoints: 2500},
			{Tier: cancellation.TierLate, MinBeforePickup: 12 * time.Hour, PenaltyBasisPoints: 5000},
		}, policy.Rules())
		assert.Equal(t, builder.PolicyZone(), policy.Location())

		pickup := time.Date(2026, 5, 1, 9, 0, 0, 0, builder.PolicyZone())
		quote := policy.Resolve(pickup, pickup.Add(-6*time.Hour), money(10000))
		assert.Equal(t, cancellation.TierNoRefund, quote.Tier)
	})

	t.Run("fractional values and timezone override", func(t *testing.T) {
		data := []byte(`
timezone: Europe/Berlin
tiers:
  - {tier: free, min_hours: 36.5, penalty_percent: 0}
  - {tier: late, min_hours: 0, penalty_percent: 12.5}
`)
		policy, err := cancellation.ParsePolicy(data, builder.PolicyZone())
		require.NoError(t, err)

		rules := policy.Rules()
		require.Len(t, rules, 2)
		assert.Equal(t, 36*time.Hour+30*time.Minute, rules[0].MinBeforePickup)
		assert.Equal(t, int64(1250), rules[1].PenaltyBasisPoints)
		assert.Equal(t, "Europe/Berlin", policy.Location().String())
	})

	t.Run("invalid tables", func(t *testing.T) {
		tests := []struct {
			name string
			data string
		}{
			{name: "not yaml", data: "tiers: [unterminated"},
			{name: "empty table", data: "tiers: []"},
			{name: "unknown tier", data: "tiers: [{tier: partial, min_hours: 1, penalty_percent: 10}]"},
			{name: "unknown timezone", data: "timezone: Mars/Olympus\ntiers: [{tier: late, min_hours: 0, penalty_percent: 50}]"},
			{name: "sub-basis-point penalty", data: "tiers: [{tier: late, min_hours: 0, penalty_percent: 12.345}]"},
			{name: "sub-minute threshold", data: "tiers: [{tier: late, min_hours: 0.001, penalty_percent: 50}]"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := cancellation.ParsePolicy([]byte(tt.data), builder.PolicyZone())
				require.ErrorIs(t, err, cancellation.ErrInvalidPolicy)
			})
		}
	})

	t.Run("load from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("tiers: [{tier: late, min_hours: 0, penalty_percent: 100}]"), 0o600))

		policy, err := cancellation.LoadPolicyFile(path, builder.PolicyZone())
		require.NoError(t, err)
		assert.Len(t, policy.Rules(), 1)

		_, err = cancellation.LoadPolicyFile(filepath.Join(t.TempDir(), "missing.yaml"), builder.PolicyZone())
		require.Error(t, err)
	})
}
