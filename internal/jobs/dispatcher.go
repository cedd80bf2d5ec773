package jobs

import (
	"context"
	"log/slog"
	"time"

	"booking-reconciler/internal/pkg/clock"
	"booking-reconciler/internal/pkg/config"
	"booking-reconciler/internal/usecase/shared"
)

const (
	retryBase = 30 * time.Second
	retryCap  = time.Hour
)

type DispatchStats struct {
	Claimed int
	Sent    int
	Retried int
	GaveUp  int
}

// InstructionDispatcher drains the refund instruction outbox into the
// payments queue. Delivery is at least once; consumers dedupe on the
// instruction ID.
type InstructionDispatcher struct {
	uow       shared.UnitOfWork
	publisher shared.InstructionPublisher
	clock     clock.Clock
	cfg       config.DispatcherConfig
}

func NewInstructionDispatcher(uow shared.UnitOfWork, publisher shared.InstructionPublisher, clock clock.Clock, cfg config.DispatcherConfig) *InstructionDispatcher {
	return &InstructionDispatcher{
		uow:       uow,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
	}
}

// RunOnce publishes one batch of due instructions.
func (d *InstructionDispatcher) RunOnce(ctx context.Context) (DispatchStats, error) {
	var stats DispatchStats
	err := d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		stats = DispatchStats{}
		now := d.clock.Now()

		due, err := tx.Outbox().ClaimDue(ctx, now, d.cfg.BatchSize)
		if err != nil {
			return err
		}
		stats.Claimed = len(due)

		for _, rec := range due {
			if pubErr := d.publisher.Publish(ctx, rec); pubErr != nil {
				attempts := rec.Attempts + 1
				giveUp := attempts >= d.cfg.MaxAttempts
				if err := tx.Outbox().MarkFailed(ctx, rec.ID, pubErr.Error(), now.Add(retryDelay(attempts)), giveUp); err != nil {
					return err
				}
				if giveUp {
					stats.GaveUp++
					slog.Error("refund instruction abandoned, operator action required",
						"instruction_id", rec.ID.String(),
						"booking_id", rec.BookingID.String(),
						"kind", rec.Instruction.Kind.String(),
						"attempts", attempts,
						"error", pubErr.Error())
				} else {
					stats.Retried++
					slog.Warn("refund instruction publish failed",
						"instruction_id", rec.ID.String(),
						"attempts", attempts,
						"error", pubErr.Error())
				}
				continue
			}

			if err := tx.Outbox().MarkSent(ctx, rec.ID, now); err != nil {
				return err
			}
			stats.Sent++
		}
		return nil
	})
	return stats, err
}

func retryDelay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := retryBase
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= retryCap {
			return retryCap
		}
	}
	return delay
}
