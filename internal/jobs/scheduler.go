package jobs

import (
	"context"
	"log/slog"
	"time"

	"booking-reconciler/internal/pkg/clock"
	"booking-reconciler/internal/usecase/shared"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 5 * time.Minute

type Scheduler struct {
	cron        *cron.Cron
	dispatcher  *InstructionDispatcher
	idempotency *KeyPurger
}

// NewScheduler creates a cron with UTC timezone and seconds precision.
func NewScheduler(dispatchSchedule string, dispatcher *InstructionDispatcher, purger *KeyPurger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron:        c,
		dispatcher:  dispatcher,
		idempotency: purger,
	}

	if _, err := c.AddFunc(dispatchSchedule, s.dispatch); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc("0 0 * * * *", s.purgeKeys); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	slog.Info("Starting cron scheduler...")
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) dispatch() {
	runWithRecovery("DispatchRefundInstructions", func(ctx context.Context) {
		stats, err := s.dispatcher.RunOnce(ctx)
		if err != nil {
			slog.Error("Failed to dispatch refund instructions", "error", err.Error())
			return
		}
		if stats.Claimed > 0 {
			slog.Info("Dispatched refund instructions",
				"claimed", stats.Claimed,
				"sent", stats.Sent,
				"retried", stats.Retried,
				"gave_up", stats.GaveUp)
		}
	})
}

func (s *Scheduler) purgeKeys() {
	runWithRecovery("PurgeIdempotencyKeys", func(ctx context.Context) {
		n, err := s.idempotency.Run(ctx)
		if err != nil {
			slog.Error("Failed to purge idempotency keys", "error", err.Error())
			return
		}
		slog.Info("Purged expired idempotency keys", "count", n)
	})
}

func runWithRecovery(jobName string, job func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	job(ctx)
}

type KeyPurger struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewKeyPurger(uow shared.UnitOfWork, clock clock.Clock) *KeyPurger {
	return &KeyPurger{uow: uow, clock: clock}
}

func (p *KeyPurger) Run(ctx context.Context) (int64, error) {
	var n int64
	err := p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		n, err = tx.Idempotency().DeleteExpired(ctx, p.clock.Now())
		return err
	})
	return n, err
}
