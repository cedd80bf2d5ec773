package booking

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is a read-only view of one booking at the instant of evaluation.
// Funding-mix amounts are always present; a source that was not used is zero.
type Snapshot struct {
	ID      uuid.UUID
	Code    string
	GuestID uuid.UUID

	Status       Status
	Verification VerificationStatus
	Payment      PaymentStatus
	Trip         TripStatus
	OpenClaim    bool

	DocumentsSubmittedAt *time.Time
	TripStartedAt        *time.Time
	TripEndedAt          *time.Time
	CancelledAt          *time.Time

	CreatedAt  time.Time
	PickupAt   time.Time
	ReturnAt   time.Time
	RentalDays int

	DailyRate    Money
	Subtotal     Money
	ServiceFee   Money
	InsuranceFee Money
	DeliveryFee  Money
	Taxes        Money
	Total        Money
	Deposit      Money

	CreditsApplied          Money
	BonusApplied            Money
	CardCharged             Money
	DepositFromWallet       Money
	DepositFromCard         Money
	CardBrand               string
	CardLast4               string
	MinimumValidationCharge bool
}

func (s Snapshot) NonRefundableFees() Money {
	return Sum(s.ServiceFee, s.InsuranceFee, s.DeliveryFee)
}

// CardContribution is the part of the subtotal paid by card.
func (s Snapshot) CardContribution() Money {
	return s.Subtotal.Sub(s.CreditsApplied).Sub(s.BonusApplied)
}

func (s Snapshot) documentsSubmitted() bool {
	return s.DocumentsSubmittedAt != nil ||
		s.Verification == VerificationSubmitted ||
		s.Verification == VerificationApproved
}
