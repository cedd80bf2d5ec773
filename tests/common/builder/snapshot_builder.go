//go:build unit || e2e

package builder

import (
	"time"

	"booking-reconciler/internal/domain/booking"

	"github.com/google/uuid"
)

var policyZone = mustLoad("America/Los_Angeles")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func PolicyZone() *time.Location {
	return policyZone
}

// SnapshotBuilder works in cents. Build derives Subtotal, Total and CardCharged
// from the parts so every default snapshot reconciles.
type SnapshotBuilder struct {
	ID      uuid.UUID
	Code    string
	GuestID uuid.UUID

	Status       booking.Status
	Verification booking.VerificationStatus
	Payment      booking.PaymentStatus
	Trip         booking.TripStatus
	OpenClaim    bool

	DocumentsSubmittedAt *time.Time
	TripStartedAt        *time.Time
	TripEndedAt          *time.Time
	CancelledAt          *time.Time

	CreatedAt  time.Time
	PickupAt   time.Time
	ReturnAt   time.Time
	RentalDays int

	DailyRate    int64
	ServiceFee   int64
	InsuranceFee int64
	DeliveryFee  int64
	Taxes        int64

	Credits           int64
	Bonus             int64
	ValidationCharge  int64
	DepositFromWallet int64
	DepositFromCard   int64
}

func NewSnapshotBuilder() *SnapshotBuilder {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, policyZone)
	pickup := time.Date(2026, 3, 20, 10, 0, 0, 0, policyZone)
	return &SnapshotBuilder{
		ID:           uuid.MustParse("6f1c2d4e-8a3b-4c5d-9e7f-0a1b2c3d4e5f"),
		Code:         "BK-1001",
		GuestID:      uuid.MustParse("0d3e5c1a-2b4f-4a6e-8c9d-1e2f3a4b5c6d"),
		Status:       booking.StatusConfirmed,
		Verification: booking.VerificationApproved,
		Payment:      booking.PaymentCaptured,
		Trip:         booking.TripNotStarted,
		CreatedAt:    created,
		PickupAt:     pickup,
		ReturnAt:     pickup.AddDate(0, 0, 3),
		RentalDays:   3,
		DailyRate:    10000,
		ServiceFee:   1500,
		InsuranceFee: 3000,
		DeliveryFee:  0,
		Taxes:        2400,
	}
}

func (b *SnapshotBuilder) With(mutate func(*SnapshotBuilder)) *SnapshotBuilder {
	mutate(b)
	return b
}

func (b *SnapshotBuilder) Build() booking.Snapshot {
	subtotal := b.DailyRate * int64(b.RentalDays)
	total := subtotal + b.ServiceFee + b.InsuranceFee + b.DeliveryFee + b.Taxes
	card := total - b.Credits - b.Bonus + b.ValidationCharge

	return booking.Snapshot{
		ID:                      b.ID,
		Code:                    b.Code,
		GuestID:                 b.GuestID,
		Status:                  b.Status,
		Verification:            b.Verification,
		Payment:                 b.Payment,
		Trip:                    b.Trip,
		OpenClaim:               b.OpenClaim,
		DocumentsSubmittedAt:    b.DocumentsSubmittedAt,
		TripStartedAt:           b.TripStartedAt,
		TripEndedAt:             b.TripEndedAt,
		CancelledAt:             b.CancelledAt,
		CreatedAt:               b.CreatedAt,
		PickupAt:                b.PickupAt,
		ReturnAt:                b.ReturnAt,
		RentalDays:              b.RentalDays,
		DailyRate:               booking.NewMoney(b.DailyRate),
		Subtotal:                booking.NewMoney(subtotal),
		ServiceFee:              booking.NewMoney(b.ServiceFee),
		InsuranceFee:            booking.NewMoney(b.InsuranceFee),
		DeliveryFee:             booking.NewMoney(b.DeliveryFee),
		Taxes:                   booking.NewMoney(b.Taxes),
		Total:                   booking.NewMoney(total),
		Deposit:                 booking.NewMoney(b.DepositFromWallet + b.DepositFromCard),
		CreditsApplied:          booking.NewMoney(b.Credits),
		BonusApplied:            booking.NewMoney(b.Bonus),
		CardCharged:             booking.NewMoney(card),
		DepositFromWallet:       booking.NewMoney(b.DepositFromWallet),
		DepositFromCard:         booking.NewMoney(b.DepositFromCard),
		CardBrand:               "visa",
		CardLast4:               "4242",
		MinimumValidationCharge: b.ValidationCharge > 0,
	}
}

// Fluent builder methods
func (b *SnapshotBuilder) WithSubtotal(dailyRate int64, days int) *SnapshotBuilder {
	b.DailyRate = dailyRate
	b.RentalDays = days
	b.ReturnAt = b.PickupAt.AddDate(0, 0, days)
	return b
}

func (b *SnapshotBuilder) WithoutFees() *SnapshotBuilder {
	b.ServiceFee, b.InsuranceFee, b.DeliveryFee, b.Taxes = 0, 0, 0, 0
	return b
}

func (b *SnapshotBuilder) WithFunding(credits, bonus int64) *SnapshotBuilder {
	b.Credits = credits
	b.Bonus = bonus
	return b
}

func (b *SnapshotBuilder) WithValidationCharge(cents int64) *SnapshotBuilder {
	b.ValidationCharge = cents
	return b
}

func (b *SnapshotBuilder) WithDeposit(wallet, card int64) *SnapshotBuilder {
	b.DepositFromWallet = wallet
	b.DepositFromCard = card
	return b
}

func (b *SnapshotBuilder) WithPickupAt(pickup time.Time) *SnapshotBuilder {
	b.PickupAt = pickup
	b.ReturnAt = pickup.AddDate(0, 0, b.RentalDays)
	return b
}

func (b *SnapshotBuilder) AsPending() *SnapshotBuilder {
	b.Status = booking.StatusPending
	b.Payment = booking.PaymentAuthorized
	b.Verification = booking.VerificationSubmitted
	return b
}

func (b *SnapshotBuilder) AsStarted() *SnapshotBuilder {
	started := b.PickupAt
	b.TripStartedAt = &started
	b.Trip = booking.TripInProgress
	return b
}

func (b *SnapshotBuilder) AsEnded() *SnapshotBuilder {
	b.AsStarted()
	ended := b.ReturnAt
	b.TripEndedAt = &ended
	b.Trip = booking.TripEnded
	return b
}

func (b *SnapshotBuilder) AsCancelled() *SnapshotBuilder {
	b.Status = booking.StatusCancelled
	at := b.CreatedAt.Add(time.Hour)
	b.CancelledAt = &at
	return b
}
