package components

import (
	"log/slog"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/pkg/clock"
	"booking-reconciler/internal/pkg/config"
	"booking-reconciler/internal/usecase/commands"
	"booking-reconciler/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	ClockModule,
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var ClockModule = fx.Provide(clock.NewRealClock)

var usecaseBaseOption = fx.Provide(
	NewPolicy,
	func(cfg config.Config) booking.LifecycleRules {
		rules := booking.DefaultLifecycleRules()
		rules.VerificationGrace = cfg.Policy.VerificationGrace
		return rules
	},
	cancellation.NewEngine,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewCancellationCommands,
		commands.NewClaimCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
	),
)

// NewPolicy loads the tier table from POLICY_FILE when set, else the built-in table.
func NewPolicy(cfg config.Config) (cancellation.Policy, error) {
	loc, err := cfg.Policy.Location()
	if err != nil {
		return cancellation.Policy{}, err
	}
	if cfg.Policy.File == "" {
		return cancellation.DefaultPolicy(loc), nil
	}

	policy, err := cancellation.LoadPolicyFile(cfg.Policy.File, loc)
	if err != nil {
		return cancellation.Policy{}, err
	}
	slog.Info("cancellation policy loaded", "file", cfg.Policy.File, "tiers", len(policy.Rules()))
	return policy, nil
}
