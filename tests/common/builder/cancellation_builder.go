//go:build unit || e2e

package builder

import (
	"time"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"
	reqdto "booking-reconciler/internal/handler/dto/request"
	"booking-reconciler/internal/usecase/queries"
	"booking-reconciler/internal/usecase/shared"

	"github.com/google/uuid"
)

// CancellationBuilder quotes a snapshot with the default policy, so every view
// it builds carries a reconciled refund.
type CancellationBuilder struct {
	Snapshot *SnapshotBuilder
	ID       uuid.UUID
	ActorID  uuid.UUID
	Reason   string
	CancelAt time.Time
	Status   shared.InstructionStatus
}

func NewCancellationBuilder() *CancellationBuilder {
	snap := NewSnapshotBuilder().WithDeposit(0, 20000)
	return &CancellationBuilder{
		Snapshot: snap,
		ID:       uuid.MustParse("a7d0c3b2-5e4f-4a1b-9c8d-7e6f5a4b3c2d"),
		ActorID:  snap.GuestID,
		Reason:   "plans changed",
		CancelAt: snap.PickupAt.Add(-30 * time.Hour),
		Status:   shared.InstructionQueued,
	}
}

func (b *CancellationBuilder) With(mutate func(*CancellationBuilder)) *CancellationBuilder {
	mutate(b)
	return b
}

func (b *CancellationBuilder) Engine() *cancellation.Engine {
	return cancellation.NewEngine(cancellation.DefaultPolicy(policyZone), booking.DefaultLifecycleRules())
}

func (b *CancellationBuilder) BuildResult() cancellation.RefundResult {
	result, err := b.Engine().Quote(b.Snapshot.Build(), b.CancelAt)
	if err != nil {
		panic(err)
	}
	return result
}

func (b *CancellationBuilder) BuildQuoteView() *queries.QuoteView {
	result := b.BuildResult()
	return &queries.QuoteView{Result: result, Instructions: result.Instructions()}
}

func (b *CancellationBuilder) BuildView() *queries.CancellationView {
	result := b.BuildResult()
	snap := b.Snapshot.Build()

	var records []shared.InstructionRecord
	for _, ins := range result.Instructions() {
		records = append(records, shared.InstructionRecord{
			ID:             uuid.New(),
			CancellationID: b.ID,
			BookingID:      snap.ID,
			Instruction:    ins,
			Status:         b.Status,
			NextAttemptAt:  b.CancelAt,
			CreatedAt:      b.CancelAt,
		})
	}

	reason := b.Reason
	return queries.NewCancellationView(&shared.StoredCancellation{
		ID:        b.ID,
		BookingID: snap.ID,
		ActorID:   b.ActorID,
		Reason:    &reason,
		Result:    result,
		CreatedAt: b.CancelAt,
		UpdatedAt: b.CancelAt,
	}, records)
}

func (b *CancellationBuilder) BuildLifecycleView() *queries.LifecycleView {
	snap := b.Snapshot.Build()
	state := b.Engine().Lifecycle(snap, b.CancelAt)
	return &queries.LifecycleView{
		BookingID:          snap.ID,
		Code:               snap.Code,
		State:              state,
		AllowsCancellation: state.AllowsCancellation(),
		EvaluatedAt:        b.CancelAt,
	}
}

func (b *CancellationBuilder) BuildCancelRequestDTO() reqdto.CancelBookingRequest {
	reason := b.Reason
	return reqdto.CancelBookingRequest{Reason: &reason}
}
