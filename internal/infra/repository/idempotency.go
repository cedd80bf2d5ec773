package repository

import (
	"context"
	"time"

	"booking-reconciler/internal/infra"
	"booking-reconciler/internal/infra/db"
	"booking-reconciler/internal/pkg/pgconv"
	"booking-reconciler/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const tryInsertIdempotencyKey = `
INSERT INTO idempotency_keys (key, actor_id, endpoint, request_hash, status, expires_at)
VALUES ($1, $2, $3, $4, 'processing', $5)
ON CONFLICT (key, actor_id) DO UPDATE
SET endpoint = EXCLUDED.endpoint,
    request_hash = EXCLUDED.request_hash,
    status = 'processing',
    result_cancellation_id = NULL,
    expires_at = EXCLUDED.expires_at,
    updated_at = NOW()
WHERE idempotency_keys.expires_at < $6`

const getIdempotencyKey = `
SELECT key, actor_id, status, request_hash, result_cancellation_id, expires_at
FROM idempotency_keys
WHERE key = $1 AND actor_id = $2`

const completeIdempotencyKey = `
UPDATE idempotency_keys
SET status = 'completed', result_cancellation_id = $3, updated_at = NOW()
WHERE key = $1 AND actor_id = $2`

const deleteExpiredIdempotencyKeys = `
DELETE FROM idempotency_keys WHERE expires_at < $1`

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(db db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// TryInsert claims the key for this request. An expired key is reclaimed.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, key, actorID uuid.UUID, endpoint, requestHash string, now, expiresAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, tryInsertIdempotencyKey, key, actorID, endpoint, requestHash, pgconv.TimeToPgtype(expiresAt), now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, actorID uuid.UUID, now time.Time) (*shared.IdempotencyRecord, error) {
	var (
		rec      shared.IdempotencyRecord
		resultID pgtype.UUID
	)
	err := r.db.QueryRow(ctx, getIdempotencyKey, key, actorID).Scan(
		&rec.Key, &rec.ActorID, &rec.Status, &rec.RequestHash, &resultID, &rec.ExpiresAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	rec.ResultCancellationID = pgconv.UUIDPtrFromPgtype(resultID)

	if now.After(rec.ExpiresAt) {
		return nil, infra.WrapRepoErr("idempotency key expired", nil, infra.KindNotFound)
	}
	return &rec, nil
}

func (r *IdempotencyRepository) MarkCompleted(ctx context.Context, key, actorID, cancellationID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, completeIdempotencyKey, key, actorID, cancellationID); err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}
	return nil
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, deleteExpiredIdempotencyKeys, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
