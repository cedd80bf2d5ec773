package shared

import (
	"time"

	"booking-reconciler/internal/domain/cancellation"

	"github.com/google/uuid"
)

const (
	IdempotencyProcessing = "processing"
	IdempotencyCompleted  = "completed"
)

type IdempotencyRecord struct {
	Key                  uuid.UUID
	ActorID              uuid.UUID
	Status               string
	RequestHash          string
	ResultCancellationID *uuid.UUID
	ExpiresAt            time.Time
}

type NewCancellation struct {
	BookingID uuid.UUID
	ActorID   uuid.UUID
	Reason    *string
	Result    cancellation.RefundResult
}

// StoredCancellation is a persisted cancellation with its audit fields.
type StoredCancellation struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	ActorID   uuid.UUID
	Reason    *string
	Result    cancellation.RefundResult
	CreatedAt time.Time
	UpdatedAt time.Time
}

type InstructionStatus string

const (
	InstructionQueued InstructionStatus = "queued"
	InstructionSent   InstructionStatus = "sent"
	InstructionFailed InstructionStatus = "failed"
	InstructionVoid   InstructionStatus = "void"
)

type InstructionRecord struct {
	ID             uuid.UUID
	CancellationID uuid.UUID
	BookingID      uuid.UUID
	Instruction    cancellation.Instruction
	Status         InstructionStatus
	Attempts       int
	LastError      *string
	NextAttemptAt  time.Time
	SentAt         *time.Time
	CreatedAt      time.Time
}
