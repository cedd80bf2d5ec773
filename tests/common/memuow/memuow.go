//go:build unit || e2e

// Package memuow is an in-memory shared.UnitOfWork for use case tests. A
// failed Within call rolls the store back to its state before the call.
package memuow

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/infra"
	"booking-reconciler/internal/usecase/shared"

	"github.com/google/uuid"
)

type idemKey struct {
	key     uuid.UUID
	actorID uuid.UUID
}

type state struct {
	bookings      map[uuid.UUID]booking.Snapshot
	cancellations map[uuid.UUID]shared.StoredCancellation
	instructions  []shared.InstructionRecord
	keys          map[idemKey]shared.IdempotencyRecord
}

func (s state) clone() state {
	return state{
		bookings:      maps.Clone(s.bookings),
		cancellations: maps.Clone(s.cancellations),
		instructions:  slices.Clone(s.instructions),
		keys:          maps.Clone(s.keys),
	}
}

type Store struct {
	mu    sync.Mutex
	state state
	now   func() time.Time
}

var _ shared.UnitOfWork = (*Store)(nil)

func New(now func() time.Time) *Store {
	return &Store{
		state: state{
			bookings:      map[uuid.UUID]booking.Snapshot{},
			cancellations: map[uuid.UUID]shared.StoredCancellation{},
			keys:          map[idemKey]shared.IdempotencyRecord{},
		},
		now: now,
	}
}

func (s *Store) PutBooking(b booking.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.bookings[b.ID] = b
}

func (s *Store) Booking(id uuid.UUID) booking.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.bookings[id]
}

func (s *Store) Instructions() []shared.InstructionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.instructions)
}

func (s *Store) Cancellations() []shared.StoredCancellation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Collect(maps.Values(s.state.cancellations))
}

// SetInstructionStatus forces an instruction into a status, e.g. to simulate
// a release that was already sent.
func (s *Store) SetInstructionStatus(kind cancellation.InstructionKind, status shared.InstructionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.instructions {
		if s.state.instructions[i].Instruction.Kind == kind {
			s.state.instructions[i].Status = status
		}
	}
}

// Within serializes transactions.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.state.clone()
	if err := fn(ctx, &memTx{st: &s.state, now: s.now}); err != nil {
		s.state = backup
		return err
	}
	return nil
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.ReadTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state.clone()
	return fn(ctx, &memTx{st: &st, now: s.now})
}

type memTx struct {
	st  *state
	now func() time.Time
}

func (t *memTx) Bookings() shared.BookingReader                { return t }
func (t *memTx) Cancellations() shared.CancellationReader      { return cancellations{t} }
func (t *memTx) Instructions() shared.InstructionReader        { return outbox{t} }
func (t *memTx) BookingWriter() shared.BookingWriter           { return t }
func (t *memTx) CancellationWriter() shared.CancellationWriter { return cancellations{t} }
func (t *memTx) Outbox() shared.InstructionRepository          { return outbox{t} }
func (t *memTx) Idempotency() shared.IdempotencyRepository     { return idempotency{t} }

func (t *memTx) Snapshot(_ context.Context, id uuid.UUID) (booking.Snapshot, error) {
	b, ok := t.st.bookings[id]
	if !ok {
		return booking.Snapshot{}, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return b, nil
}

func (t *memTx) SnapshotForUpdate(ctx context.Context, id uuid.UUID) (booking.Snapshot, error) {
	return t.Snapshot(ctx, id)
}

func (t *memTx) MarkCancelled(_ context.Context, id uuid.UUID, at time.Time) error {
	b, ok := t.st.bookings[id]
	if !ok {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	if b.Status == booking.StatusCancelled {
		return infra.WrapRepoErr("booking already cancelled", nil, infra.KindConflict)
	}
	b.Status = booking.StatusCancelled
	b.CancelledAt = &at
	t.st.bookings[id] = b
	return nil
}

type cancellations struct{ *memTx }

func (c cancellations) ByBookingID(_ context.Context, bookingID uuid.UUID) (*shared.StoredCancellation, error) {
	for _, stored := range c.st.cancellations {
		if stored.BookingID == bookingID {
			return &stored, nil
		}
	}
	return nil, infra.WrapRepoErr("cancellation not found", nil, infra.KindNotFound)
}

func (c cancellations) ByID(_ context.Context, id uuid.UUID) (*shared.StoredCancellation, error) {
	stored, ok := c.st.cancellations[id]
	if !ok {
		return nil, infra.WrapRepoErr("cancellation not found", nil, infra.KindNotFound)
	}
	return &stored, nil
}

func (c cancellations) Create(_ context.Context, n shared.NewCancellation) (uuid.UUID, error) {
	for _, stored := range c.st.cancellations {
		if stored.BookingID == n.BookingID {
			return uuid.Nil, infra.WrapRepoErr("cancellation exists", nil, infra.KindDuplicateKey)
		}
	}
	id := uuid.New()
	c.st.cancellations[id] = shared.StoredCancellation{
		ID:        id,
		BookingID: n.BookingID,
		ActorID:   n.ActorID,
		Reason:    n.Reason,
		Result:    n.Result,
		CreatedAt: c.now(),
		UpdatedAt: c.now(),
	}
	return id, nil
}

func (c cancellations) UpdateDeposit(_ context.Context, id uuid.UUID, res cancellation.RefundResult) error {
	stored, ok := c.st.cancellations[id]
	if !ok {
		return infra.WrapRepoErr("cancellation not found", nil, infra.KindNotFound)
	}
	stored.Result.DepositFromWallet = res.DepositFromWallet
	stored.Result.DepositFromCard = res.DepositFromCard
	stored.Result.DepositWithheldFromWallet = res.DepositWithheldFromWallet
	stored.Result.DepositWithheldFromCard = res.DepositWithheldFromCard
	stored.Result.TotalReturnedToCard = res.TotalReturnedToCard
	stored.UpdatedAt = c.now()
	c.st.cancellations[id] = stored
	return nil
}

type outbox struct{ *memTx }

func (o outbox) ByCancellation(_ context.Context, cancellationID uuid.UUID) ([]shared.InstructionRecord, error) {
	var out []shared.InstructionRecord
	for _, rec := range o.st.instructions {
		if rec.CancellationID == cancellationID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (o outbox) Enqueue(_ context.Context, cancellationID, bookingID uuid.UUID, instructions []cancellation.Instruction, runAt time.Time) error {
	for _, in := range instructions {
		o.st.instructions = append(o.st.instructions, shared.InstructionRecord{
			ID:             uuid.New(),
			CancellationID: cancellationID,
			BookingID:      bookingID,
			Instruction:    in,
			Status:         shared.InstructionQueued,
			NextAttemptAt:  runAt,
			CreatedAt:      o.now(),
		})
	}
	return nil
}

func (o outbox) ReplaceDepositRelease(ctx context.Context, cancellationID, bookingID uuid.UUID, in *cancellation.Instruction, runAt time.Time) error {
	for i, rec := range o.st.instructions {
		if rec.CancellationID != cancellationID || rec.Instruction.Kind != cancellation.InstructionDepositRelease {
			continue
		}
		if in == nil {
			if rec.Status == shared.InstructionQueued || rec.Status == shared.InstructionFailed {
				o.st.instructions[i].Status = shared.InstructionVoid
			}
			return nil
		}
		if rec.Status == shared.InstructionSent {
			return infra.WrapRepoErr("deposit release already sent", nil, infra.KindConflict)
		}
		o.st.instructions[i].Instruction = *in
		o.st.instructions[i].Status = shared.InstructionQueued
		o.st.instructions[i].Attempts = 0
		o.st.instructions[i].LastError = nil
		o.st.instructions[i].NextAttemptAt = runAt
		return nil
	}
	if in == nil {
		return nil
	}
	return o.Enqueue(ctx, cancellationID, bookingID, []cancellation.Instruction{*in}, runAt)
}

func (o outbox) ClaimDue(_ context.Context, now time.Time, limit int) ([]shared.InstructionRecord, error) {
	var out []shared.InstructionRecord
	for _, rec := range o.st.instructions {
		if len(out) == limit {
			break
		}
		if rec.Status == shared.InstructionQueued && !rec.NextAttemptAt.After(now) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (o outbox) MarkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	return o.update(id, func(rec *shared.InstructionRecord) {
		rec.Status = shared.InstructionSent
		rec.Attempts++
		rec.LastError = nil
		rec.SentAt = &at
	})
}

func (o outbox) MarkFailed(_ context.Context, id uuid.UUID, lastErr string, nextAttemptAt time.Time, giveUp bool) error {
	return o.update(id, func(rec *shared.InstructionRecord) {
		rec.Attempts++
		rec.LastError = &lastErr
		rec.NextAttemptAt = nextAttemptAt
		if giveUp {
			rec.Status = shared.InstructionFailed
		}
	})
}

func (o outbox) update(id uuid.UUID, fn func(*shared.InstructionRecord)) error {
	for i := range o.st.instructions {
		if o.st.instructions[i].ID == id {
			fn(&o.st.instructions[i])
			return nil
		}
	}
	return infra.WrapRepoErr("refund instruction not found", nil, infra.KindNotFound)
}

type idempotency struct{ *memTx }

func (r idempotency) TryInsert(_ context.Context, key, actorID uuid.UUID, _ string, requestHash string, now, expiresAt time.Time) (bool, error) {
	k := idemKey{key, actorID}
	if existing, ok := r.st.keys[k]; ok && !now.After(existing.ExpiresAt) {
		return false, nil
	}
	r.st.keys[k] = shared.IdempotencyRecord{
		Key:         key,
		ActorID:     actorID,
		Status:      shared.IdempotencyProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r idempotency) Get(_ context.Context, key, actorID uuid.UUID, now time.Time) (*shared.IdempotencyRecord, error) {
	rec, ok := r.st.keys[idemKey{key, actorID}]
	if !ok || now.After(rec.ExpiresAt) {
		return nil, infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return &rec, nil
}

func (r idempotency) MarkCompleted(_ context.Context, key, actorID, cancellationID uuid.UUID) error {
	k := idemKey{key, actorID}
	rec, ok := r.st.keys[k]
	if !ok {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	rec.Status = shared.IdempotencyCompleted
	rec.ResultCancellationID = &cancellationID
	r.st.keys[k] = rec
	return nil
}

func (r idempotency) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, rec := range r.st.keys {
		if rec.ExpiresAt.Before(now) {
			delete(r.st.keys, k)
			n++
		}
	}
	return n, nil
}
