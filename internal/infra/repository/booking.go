package repository

import (
	"context"
	"time"

	"booking-reconciler/internal/infra"
	"booking-reconciler/internal/infra/db"

	"github.com/google/uuid"
)

const markBookingCancelled = `
UPDATE bookings
SET status = 'cancelled', cancelled_at = $2, updated_at = NOW()
WHERE id = $1 AND status <> 'cancelled'`

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(db db.DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, markBookingCancelled, id, at)
	if err != nil {
		return infra.WrapRepoErr("failed to mark booking cancelled", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking already cancelled", nil, infra.KindConflict)
	}
	return nil
}
