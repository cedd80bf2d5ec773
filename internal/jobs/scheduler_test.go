//go:build unit

package jobs_test

import (
	"context"
	"testing"
	"time"

	"booking-reconciler/internal/jobs"
	"booking-reconciler/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	store, clk := cancelledStore(t)
	dispatcher := jobs.NewInstructionDispatcher(store, &recordingPublisher{}, clk, config.DispatcherConfig{BatchSize: 10, MaxAttempts: 2})
	purger := jobs.NewKeyPurger(store, clk)

	t.Run("accepts a seconds-precision schedule", func(t *testing.T) {
		s, err := jobs.NewScheduler("*/30 * * * * *", dispatcher, purger)
		require.NoError(t, err)
		s.Start()
		s.Stop()
	})

	t.Run("rejects a five-field schedule", func(t *testing.T) {
		_, err := jobs.NewScheduler("*/5 * * * *", dispatcher, purger)
		assert.Error(t, err)
	})
}

func TestKeyPurger_Run(t *testing.T) {
	ctx := context.Background()
	store, clk := cancelledStore(t)
	purger := jobs.NewKeyPurger(store, clk)

	n, err := purger.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	clk.Add(25 * time.Hour)
	n, err = purger.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = purger.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
