package components

import (
	"context"

	"booking-reconciler/internal/infra/queue"
	"booking-reconciler/internal/jobs"
	"booking-reconciler/internal/pkg/config"
	"booking-reconciler/internal/usecase/shared"

	"go.uber.org/fx"
)

var JobsModule = fx.Module("jobs",
	fx.Provide(
		NewPublisher,
		func(cfg config.Config) config.DispatcherConfig { return cfg.Dispatcher },
		jobs.NewInstructionDispatcher,
		jobs.NewKeyPurger,
		NewScheduler,
	),
	fx.Invoke(func(*jobs.Scheduler) {}),
)

func NewPublisher(cfg config.Config) (shared.InstructionPublisher, error) {
	return queue.NewPublisher(context.Background(), cfg.AWS)
}

func NewScheduler(lc fx.Lifecycle, cfg config.Config, d *jobs.InstructionDispatcher, p *jobs.KeyPurger) (*jobs.Scheduler, error) {
	s, err := jobs.NewScheduler(cfg.Dispatcher.Schedule, d, p)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			s.Stop()
			return nil
		},
	})
	return s, nil
}
