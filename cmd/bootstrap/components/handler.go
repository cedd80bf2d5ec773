package components

import (
	"booking-reconciler/internal/handler"
	"booking-reconciler/internal/handler/api"
	"booking-reconciler/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
