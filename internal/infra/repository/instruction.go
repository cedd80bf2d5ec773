package repository

import (
	"context"
	"encoding/json"
	"time"

	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/infra"
	"booking-reconciler/internal/infra/db"
	"booking-reconciler/internal/pkg/errs"
	"booking-reconciler/internal/pkg/pgconv"
	"booking-reconciler/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const instructionColumns = `
    id, cancellation_id, booking_id, kind, amount_cents, payload,
    status, attempts, last_error, next_attempt_at, sent_at, created_at`

const insertInstruction = `
INSERT INTO refund_instructions (cancellation_id, booking_id, kind, amount_cents, payload, next_attempt_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// Re-queues a queued, voided or abandoned release; a sent release is left untouched.
const upsertDepositRelease = `
INSERT INTO refund_instructions (cancellation_id, booking_id, kind, amount_cents, payload, next_attempt_at)
VALUES ($1, $2, 'deposit_release', $3, $4, $5)
ON CONFLICT (cancellation_id, kind) DO UPDATE
SET amount_cents = EXCLUDED.amount_cents,
    payload = EXCLUDED.payload,
    status = 'queued',
    attempts = 0,
    last_error = NULL,
    next_attempt_at = EXCLUDED.next_attempt_at,
    updated_at = NOW()
WHERE refund_instructions.status IN ('queued', 'void', 'failed')`

const voidDepositRelease = `
UPDATE refund_instructions
SET status = 'void', updated_at = NOW()
WHERE cancellation_id = $1 AND kind = 'deposit_release' AND status IN ('queued', 'failed')`

const selectDueInstructions = `
SELECT` + instructionColumns + `
FROM refund_instructions
WHERE status = 'queued' AND next_attempt_at <= $1
ORDER BY next_attempt_at, id
LIMIT $2
FOR UPDATE SKIP LOCKED`

const markInstructionSent = `
UPDATE refund_instructions
SET status = 'sent', attempts = attempts + 1, last_error = NULL, sent_at = $2, updated_at = NOW()
WHERE id = $1`

const markInstructionFailed = `
UPDATE refund_instructions
SET status = CASE WHEN $4::boolean THEN 'failed' ELSE 'queued' END,
    attempts = attempts + 1,
    last_error = $2,
    next_attempt_at = $3,
    updated_at = NOW()
WHERE id = $1`

// instructionPayload is the jsonb body stored with each instruction and
// published to the payment queue.
type instructionPayload struct {
	WalletPortionCents int64 `json:"wallet_portion_cents,omitempty"`
	CardPortionCents   int64 `json:"card_portion_cents,omitempty"`
}

type InstructionRepository struct {
	db db.DBTX
}

func NewInstructionRepository(db db.DBTX) *InstructionRepository {
	return &InstructionRepository{db: db}
}

func (r *InstructionRepository) Enqueue(ctx context.Context, cancellationID, bookingID uuid.UUID, instructions []cancellation.Instruction, runAt time.Time) error {
	if len(instructions) == 0 {
		return nil
	}

	for _, in := range instructions {
		payload, err := marshalPayload(in)
		if err != nil {
			return err
		}
		if _, err := r.db.Exec(ctx, insertInstruction, cancellationID, bookingID, in.Kind.String(), in.Amount.Cents(), payload, runAt); err != nil {
			return infra.WrapRepoErr("failed to enqueue refund instruction", err)
		}
	}
	return nil
}

func (r *InstructionRepository) ByCancellation(ctx context.Context, cancellationID uuid.UUID) ([]shared.InstructionRecord, error) {
	rows, err := r.db.Query(ctx, "SELECT"+instructionColumns+"\nFROM refund_instructions WHERE cancellation_id = $1 ORDER BY created_at, kind", cancellationID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list refund instructions", err)
	}
	return collectInstructions(rows)
}

// ReplaceDepositRelease re-queues the deposit release with a new amount, or
// voids it when in is nil.
func (r *InstructionRepository) ReplaceDepositRelease(ctx context.Context, cancellationID, bookingID uuid.UUID, in *cancellation.Instruction, runAt time.Time) error {
	if in == nil {
		if _, err := r.db.Exec(ctx, voidDepositRelease, cancellationID); err != nil {
			return infra.WrapRepoErr("failed to void deposit release", err)
		}
		return nil
	}

	payload, err := marshalPayload(*in)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, upsertDepositRelease, cancellationID, bookingID, in.Amount.Cents(), payload, runAt)
	if err != nil {
		return infra.WrapRepoErr("failed to replace deposit release", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("deposit release already sent", nil, infra.KindConflict)
	}
	return nil
}

// ClaimDue locks up to limit queued instructions; the locks hold until the
// surrounding transaction ends.
func (r *InstructionRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]shared.InstructionRecord, error) {
	rows, err := r.db.Query(ctx, selectDueInstructions, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim due refund instructions", err)
	}
	return collectInstructions(rows)
}

func (r *InstructionRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := r.db.Exec(ctx, markInstructionSent, id, at); err != nil {
		return infra.WrapRepoErr("failed to mark refund instruction sent", err)
	}
	return nil
}

func (r *InstructionRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastErr string, nextAttemptAt time.Time, giveUp bool) error {
	if _, err := r.db.Exec(ctx, markInstructionFailed, id, lastErr, nextAttemptAt, giveUp); err != nil {
		return infra.WrapRepoErr("failed to mark refund instruction failed", err)
	}
	return nil
}

func marshalPayload(in cancellation.Instruction) ([]byte, error) {
	payload, err := json.Marshal(instructionPayload{
		WalletPortionCents: in.WalletPortion.Cents(),
		CardPortionCents:   in.CardPortion.Cents(),
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to marshal instruction payload")
	}
	return payload, nil
}

func collectInstructions(rows pgx.Rows) ([]shared.InstructionRecord, error) {
	defer rows.Close()

	var out []shared.InstructionRecord
	for rows.Next() {
		var (
			rec       shared.InstructionRecord
			kind      string
			status    string
			amount    int64
			payload   []byte
			lastError pgtype.Text
			sentAt    pgtype.Timestamptz
		)
		if err := rows.Scan(
			&rec.ID, &rec.CancellationID, &rec.BookingID, &kind, &amount, &payload,
			&status, &rec.Attempts, &lastError, &rec.NextAttemptAt, &sentAt, &rec.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan refund instruction", err)
		}

		var p instructionPayload
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, infra.WrapRepoErr("failed to decode instruction payload", err)
			}
		}

		rec.Instruction = cancellation.Instruction{
			Kind:          cancellation.InstructionKind(kind),
			Amount:        pgconv.MoneyFromCents(amount),
			WalletPortion: pgconv.MoneyFromCents(p.WalletPortionCents),
			CardPortion:   pgconv.MoneyFromCents(p.CardPortionCents),
		}
		rec.Status = shared.InstructionStatus(status)
		rec.LastError = pgconv.StringPtrFromPgtype(lastError)
		rec.SentAt = pgconv.TimePtrFromPgtype(sentAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate refund instructions", err)
	}
	return out, nil
}
