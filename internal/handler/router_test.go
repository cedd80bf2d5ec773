//go:build unit

package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"booking-reconciler/internal/domain/actor"
	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/handler"
	"booking-reconciler/internal/handler/api"
	"booking-reconciler/internal/handler/httperr"
	"booking-reconciler/internal/handler/middleware"
	"booking-reconciler/internal/pkg/config"
	"booking-reconciler/tests/common/builder"
	"booking-reconciler/tests/common/httptest"
	commandsmock "booking-reconciler/tests/mock/commands"
	queriesmock "booking-reconciler/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type stubValidator map[string]actor.Actor

func (v stubValidator) ValidateToken(token string) (actor.Actor, error) {
	a, ok := v[token]
	if !ok {
		return actor.Actor{}, errors.New("unknown token")
	}
	return a, nil
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	guest := actor.Actor{ID: uuid.New(), Role: actor.RoleGuest}
	support := actor.Actor{ID: uuid.New(), Role: actor.RoleSupport}
	operator := actor.Actor{ID: uuid.New(), Role: actor.RoleOperator}
	tokens := stubValidator{"guest": guest, "support": support, "operator": operator}

	setup := func(t *testing.T) (*gin.Engine, *commandsmock.MockClaimCommands, *queriesmock.MockBookingQueries) {
		ctrl := gomock.NewController(t)
		q := queriesmock.NewMockBookingQueries(ctrl)
		claims := commandsmock.NewMockClaimCommands(ctrl)
		cancellations := commandsmock.NewMockCancellationCommands(ctrl)

		cfg := config.NewTestConfig()
		engine := gin.New()
		handler.NewRouter(engine, cfg, middleware.NewLogger(cfg.Log),
			api.NewBookingHandler(q, cancellations, claims),
			middleware.NewAuthMiddleware(tokens))
		return engine, claims, q
	}

	cb := builder.NewCancellationBuilder()
	bookingID := cb.Snapshot.Build().ID
	holdURL := "/api/bookings/" + bookingID.String() + "/deposit-hold"
	holdBody := map[string]any{"amountCents": 5000}

	t.Run("health is public", func(t *testing.T) {
		router, _, _ := setup(t)
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/health", nil, "")
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, nil)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("bookings require a token", func(t *testing.T) {
		router, _, _ := setup(t)

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/api/bookings/"+bookingID.String()+"/lifecycle", nil, "")
		httptest.AssertErrorCode(t, rec, http.StatusUnauthorized, httperr.CodeUnauthorized)

		rec = httptest.PerformRequest(t, router, http.MethodGet, "/api/bookings/"+bookingID.String()+"/lifecycle", nil, "forged")
		httptest.AssertErrorCode(t, rec, http.StatusUnauthorized, httperr.CodeUnauthorized)
	})

	t.Run("authenticated actor reaches the handler", func(t *testing.T) {
		router, _, q := setup(t)
		q.EXPECT().Lifecycle(gomock.Any(), bookingID, gomock.Nil(), support).
			Return(cb.BuildLifecycleView(), nil).Times(1)

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/api/bookings/"+bookingID.String()+"/lifecycle", nil, "support")
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, nil)
	})

	t.Run("deposit hold is operator only", func(t *testing.T) {
		router, claims, _ := setup(t)

		for _, token := range []string{"guest", "support"} {
			rec := httptest.PerformRequest(t, router, http.MethodPost, holdURL, holdBody, token)
			httptest.AssertErrorCode(t, rec, http.StatusForbidden, httperr.CodeForbidden)
		}

		claims.EXPECT().WithholdDeposit(gomock.Any(), bookingID, booking.NewMoney(5000), operator).
			Return(cb.BuildView(), nil).Times(1)
		rec := httptest.PerformRequest(t, router, http.MethodPost, holdURL, holdBody, "operator")
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, nil)
	})
}
