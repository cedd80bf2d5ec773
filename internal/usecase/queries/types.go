package queries

import (
	"time"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/usecase/shared"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type LifecycleView struct {
	BookingID          uuid.UUID
	Code               string
	State              booking.LifecycleState
	AllowsCancellation bool
	EvaluatedAt        time.Time
}

type QuoteView struct {
	Result       cancellation.RefundResult
	Instructions []cancellation.Instruction
}

type CancellationView struct {
	ID           uuid.UUID
	ActorID      uuid.UUID
	Reason       *string
	Result       cancellation.RefundResult
	Instructions []shared.InstructionRecord
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewCancellationView(c *shared.StoredCancellation, instructions []shared.InstructionRecord) *CancellationView {
	return &CancellationView{
		ID:           c.ID,
		ActorID:      c.ActorID,
		Reason:       c.Reason,
		Result:       c.Result,
		Instructions: instructions,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
