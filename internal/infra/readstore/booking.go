package readstore

import (
	"context"
	"log/slog"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/infra"
	"booking-reconciler/internal/infra/db"
	"booking-reconciler/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const selectBookingSnapshot = `
SELECT
    b.id, b.code, b.guest_id,
    b.status, b.verification_status, b.payment_status, b.trip_status, b.open_claim,
    b.documents_submitted_at, b.trip_started_at, b.trip_ended_at, b.cancelled_at,
    b.created_at, b.pickup_at, b.return_at, b.rental_days,
    b.daily_rate_cents, b.subtotal_cents, b.service_fee_cents, b.insurance_fee_cents,
    b.delivery_fee_cents, b.taxes_cents, b.total_cents, b.deposit_cents,
    COALESCE(p.credits_applied_cents, 0), COALESCE(p.bonus_applied_cents, 0),
    COALESCE(p.card_charged_cents, 0),
    COALESCE(p.deposit_from_wallet_cents, 0), COALESCE(p.deposit_from_card_cents, 0),
    COALESCE(p.card_brand, ''), COALESCE(p.card_last4, ''),
    COALESCE(p.minimum_validation_charge, FALSE)
FROM bookings b
LEFT JOIN booking_payments p ON p.booking_id = b.id
WHERE b.id = $1`

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(db db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: db}
}

func (r *BookingReadStore) Snapshot(ctx context.Context, id uuid.UUID) (booking.Snapshot, error) {
	return r.snapshot(ctx, selectBookingSnapshot, id)
}

// SnapshotForUpdate locks only the bookings row; booking_payments is nullable
// on the join side and cannot take FOR UPDATE.
func (r *BookingReadStore) SnapshotForUpdate(ctx context.Context, id uuid.UUID) (booking.Snapshot, error) {
	return r.snapshot(ctx, selectBookingSnapshot+"\nFOR UPDATE OF b", id)
}

func (r *BookingReadStore) snapshot(ctx context.Context, query string, id uuid.UUID) (booking.Snapshot, error) {
	var (
		row                                          bookingRow
		documentsAt, startedAt, endedAt, cancelledAt pgtype.Timestamptz
	)

	err := r.db.QueryRow(ctx, query, id).Scan(
		&row.ID, &row.Code, &row.GuestID,
		&row.Status, &row.Verification, &row.Payment, &row.Trip, &row.OpenClaim,
		&documentsAt, &startedAt, &endedAt, &cancelledAt,
		&row.CreatedAt, &row.PickupAt, &row.ReturnAt, &row.RentalDays,
		&row.DailyRate, &row.Subtotal, &row.ServiceFee, &row.InsuranceFee,
		&row.DeliveryFee, &row.Taxes, &row.Total, &row.Deposit,
		&row.Credits, &row.Bonus, &row.Card,
		&row.DepositFromWallet, &row.DepositFromCard,
		&row.CardBrand, &row.CardLast4, &row.ValidationCharge,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return booking.Snapshot{}, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return booking.Snapshot{}, infra.WrapRepoErr("failed to load booking snapshot", err)
	}

	row.DocumentsSubmittedAt = pgconv.TimePtrFromPgtype(documentsAt)
	row.TripStartedAt = pgconv.TimePtrFromPgtype(startedAt)
	row.TripEndedAt = pgconv.TimePtrFromPgtype(endedAt)
	row.CancelledAt = pgconv.TimePtrFromPgtype(cancelledAt)

	return row.toSnapshot()
}

type bookingRow struct {
	booking.Snapshot

	Status       string
	Verification string
	Payment      string
	Trip         string

	DailyRate, Subtotal, ServiceFee, InsuranceFee int64
	DeliveryFee, Taxes, Total, Deposit            int64
	Credits, Bonus, Card                          int64
	DepositFromWallet, DepositFromCard            int64
	ValidationCharge                              bool
}

func (r bookingRow) toSnapshot() (booking.Snapshot, error) {
	s := r.Snapshot
	s.Status = booking.Status(r.Status)
	s.Verification = booking.VerificationStatus(r.Verification)
	s.Payment = booking.PaymentStatus(r.Payment)
	s.Trip = booking.TripStatus(r.Trip)

	// Unknown values stay as they are; the lifecycle resolver reads them as
	// not yet true.
	if !s.Status.IsValid() || !s.Verification.IsValid() || !s.Payment.IsValid() || !s.Trip.IsValid() {
		slog.Warn("booking has unknown status values",
			"booking_id", s.ID.String(),
			"status", r.Status,
			"verification", r.Verification,
			"payment", r.Payment,
			"trip", r.Trip)
	}

	amounts := []struct {
		dst   *booking.Money
		cents int64
	}{
		{&s.DailyRate, r.DailyRate},
		{&s.Subtotal, r.Subtotal},
		{&s.ServiceFee, r.ServiceFee},
		{&s.InsuranceFee, r.InsuranceFee},
		{&s.DeliveryFee, r.DeliveryFee},
		{&s.Taxes, r.Taxes},
		{&s.Total, r.Total},
		{&s.Deposit, r.Deposit},
		{&s.CreditsApplied, r.Credits},
		{&s.BonusApplied, r.Bonus},
		{&s.CardCharged, r.Card},
		{&s.DepositFromWallet, r.DepositFromWallet},
		{&s.DepositFromCard, r.DepositFromCard},
	}
	for _, a := range amounts {
		*a.dst = pgconv.MoneyFromCents(a.cents)
	}
	s.MinimumValidationCharge = r.ValidationCharge
	return s, nil
}
