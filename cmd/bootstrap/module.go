package bootstrap

import (
	"booking-reconciler/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// Module wires the HTTP API.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	components.PersistenceModule,
	components.UseCaseModule,
	JWTModule,
	components.HandlerModule,
)

// DispatcherModule wires the refund instruction dispatcher. It shares the
// persistence stack with the API but has no HTTP surface.
var DispatcherModule = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	components.PersistenceModule,
	components.ClockModule,
	components.JobsModule,
)
