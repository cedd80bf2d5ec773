//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"booking-reconciler/internal/domain/actor"
	"booking-reconciler/internal/pkg/clock"
	"booking-reconciler/internal/pkg/config"
	"booking-reconciler/internal/pkg/jwt"

	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, a actor.Actor) string {
	t.Helper()
	return h.generate(t, a, clock.NewRealClock())
}

// CreateExpiredToken signs a token issued two durations ago.
func (h *JWTHelper) CreateExpiredToken(t *testing.T, a actor.Actor) string {
	t.Helper()
	duration, err := time.ParseDuration(h.cfg.Duration)
	require.NoError(t, err)
	return h.generate(t, a, clock.NewMockClock(time.Now().Add(-2*duration)))
}

func (h *JWTHelper) generate(t *testing.T, a actor.Actor, clk clock.Clock) string {
	t.Helper()
	duration, err := time.ParseDuration(h.cfg.Duration)
	require.NoError(t, err)
	token, err := jwt.NewService(h.cfg.Secret, duration, clk).GenerateToken(a.ID, a.Role)
	require.NoError(t, err)
	return token
}
