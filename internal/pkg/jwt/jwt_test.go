//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"booking-reconciler/internal/domain/actor"
	"booking-reconciler/internal/pkg/clock"
	"booking-reconciler/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	svc := jwt.NewService("secret", time.Hour, clk)
	userID := uuid.New()

	t.Run("round trip", func(t *testing.T) {
		token, err := svc.GenerateToken(userID, actor.RoleOperator)
		require.NoError(t, err)

		actual, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, actor.Actor{ID: userID, Role: actor.RoleOperator}, actual)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.GenerateToken(userID, actor.RoleGuest)
		require.NoError(t, err)

		clk.Add(2 * time.Hour)
		defer clk.Set(now)

		_, err = svc.ValidateToken(token)
		require.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := jwt.NewService("other", time.Hour, clk).GenerateToken(userID, actor.RoleGuest)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := svc.GenerateToken(userID, actor.Role("root"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}
