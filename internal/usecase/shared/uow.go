package shared

import (
	"context"
	"time"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx ReadTx) error) error
}

type ReadTx interface {
	Bookings() BookingReader
	Cancellations() CancellationReader
	Instructions() InstructionReader
}

type Tx interface {
	ReadTx
	BookingWriter() BookingWriter
	CancellationWriter() CancellationWriter
	Outbox() InstructionRepository
	Idempotency() IdempotencyRepository
}

type BookingReader interface {
	Snapshot(ctx context.Context, id uuid.UUID) (booking.Snapshot, error)
	// SnapshotForUpdate locks the booking row until the transaction ends.
	SnapshotForUpdate(ctx context.Context, id uuid.UUID) (booking.Snapshot, error)
}

type CancellationReader interface {
	ByBookingID(ctx context.Context, bookingID uuid.UUID) (*StoredCancellation, error)
	ByID(ctx context.Context, id uuid.UUID) (*StoredCancellation, error)
}

type BookingWriter interface {
	MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) error
}

type CancellationWriter interface {
	Create(ctx context.Context, c NewCancellation) (uuid.UUID, error)
	UpdateDeposit(ctx context.Context, id uuid.UUID, result cancellation.RefundResult) error
}

type InstructionReader interface {
	ByCancellation(ctx context.Context, cancellationID uuid.UUID) ([]InstructionRecord, error)
}

// InstructionRepository is the refund instruction outbox.
type InstructionRepository interface {
	InstructionReader
	Enqueue(ctx context.Context, cancellationID, bookingID uuid.UUID, instructions []cancellation.Instruction, runAt time.Time) error
	ReplaceDepositRelease(ctx context.Context, cancellationID, bookingID uuid.UUID, in *cancellation.Instruction, runAt time.Time) error
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]InstructionRecord, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastErr string, nextAttemptAt time.Time, giveUp bool) error
}

type IdempotencyRepository interface {
	// TryInsert reports false when an unexpired key already exists for the actor.
	TryInsert(ctx context.Context, key, actorID uuid.UUID, endpoint, requestHash string, now, expiresAt time.Time) (bool, error)
	Get(ctx context.Context, key, actorID uuid.UUID, now time.Time) (*IdempotencyRecord, error)
	MarkCompleted(ctx context.Context, key, actorID, cancellationID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// InstructionPublisher hands a queued instruction to the payment side.
type InstructionPublisher interface {
	Publish(ctx context.Context, rec InstructionRecord) error
}
