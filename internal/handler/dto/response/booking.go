package response

import (
	"time"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/domain/cancellation"
	"booking-reconciler/internal/pkg/errs"
	"booking-reconciler/internal/usecase/queries"
	"booking-reconciler/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type Amount struct {
	Cents int64  `json:"cents"`
	Value string `json:"value"`
}

func NewAmount(m booking.Money) Amount {
	return Amount{Cents: m.Cents(), Value: m.String()}
}

type LifecycleResponse struct {
	BookingID          uuid.UUID `json:"bookingId"`
	Code               string    `json:"code"`
	State              string    `json:"state"`
	AllowsCancellation bool      `json:"allowsCancellation"`
	EvaluatedAt        time.Time `json:"evaluatedAt"`
}

type RefundResultResponse struct {
	BookingID          uuid.UUID `json:"bookingId"`
	LifecycleState     string    `json:"lifecycleState"`
	CancelAt           time.Time `json:"cancelAt"`
	Tier               string    `json:"tier"`
	TierLabel          string    `json:"tierLabel"`
	PenaltyBasisPoints int64     `json:"penaltyBasisPoints"`
	HoursBeforePickup  float64   `json:"hoursBeforePickup"`

	Subtotal          Amount `json:"subtotal"`
	RefundAmount      Amount `json:"refundAmount"`
	PenaltyAmount     Amount `json:"penaltyAmount"`
	NonRefundableFees Amount `json:"nonRefundableFees"`
	Taxes             Amount `json:"taxes"`

	CreditsRestored        Amount `json:"creditsRestored"`
	BonusRestored          Amount `json:"bonusRestored"`
	CardRefund             Amount `json:"cardRefund"`
	ValidationChargeRefund Amount `json:"validationChargeRefund"`
	TotalReturnedToCard    Amount `json:"totalReturnedToCard"`

	PenaltyFromCredits Amount `json:"penaltyFromCredits"`
	PenaltyFromBonus   Amount `json:"penaltyFromBonus"`
	PenaltyFromCard    Amount `json:"penaltyFromCard"`

	Deposit                   Amount `json:"deposit"`
	DepositFromWallet         Amount `json:"depositFromWallet"`
	DepositFromCard           Amount `json:"depositFromCard"`
	DepositWithheldFromWallet Amount `json:"depositWithheldFromWallet"`
	DepositWithheldFromCard   Amount `json:"depositWithheldFromCard"`
}

type InstructionResponse struct {
	Kind          string `json:"kind"`
	Amount        Amount `json:"amount"`
	WalletPortion Amount `json:"walletPortion"`
	CardPortion   Amount `json:"cardPortion"`
}

type QuoteResponse struct {
	Result       RefundResultResponse  `json:"result"`
	Instructions []InstructionResponse `json:"instructions"`
}

type QueuedInstructionResponse struct {
	ID        uuid.UUID  `json:"id"`
	Kind      string     `json:"kind"`
	Amount    Amount     `json:"amount"`
	Status    string     `json:"status"`
	Attempts  int        `json:"attempts"`
	LastError *string    `json:"lastError,omitempty"`
	SentAt    *time.Time `json:"sentAt,omitempty"`
}

type CancellationResponse struct {
	ID           uuid.UUID                   `json:"id"`
	ActorID      uuid.UUID                   `json:"actorId"`
	Reason       *string                     `json:"reason,omitempty"`
	Result       RefundResultResponse        `json:"result"`
	Instructions []QueuedInstructionResponse `json:"instructions"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

// Money and the domain string types have no field-wise mapping, so copier
// gets explicit converters for them.
var copyOption = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: booking.Money{},
			DstType: Amount{},
			Fn: func(src any) (any, error) {
				return NewAmount(src.(booking.Money)), nil
			},
		},
		{
			SrcType: cancellation.Tier(""),
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				return src.(cancellation.Tier).String(), nil
			},
		},
		{
			SrcType: booking.LifecycleState(""),
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				return src.(booking.LifecycleState).String(), nil
			},
		},
		{
			SrcType: cancellation.InstructionKind(""),
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				return src.(cancellation.InstructionKind).String(), nil
			},
		},
	},
}

func FromLifecycleView(v *queries.LifecycleView) *LifecycleResponse {
	return &LifecycleResponse{
		BookingID:          v.BookingID,
		Code:               v.Code,
		State:              v.State.String(),
		AllowsCancellation: v.AllowsCancellation,
		EvaluatedAt:        v.EvaluatedAt,
	}
}

func FromRefundResult(r cancellation.RefundResult) (RefundResultResponse, error) {
	var out RefundResultResponse
	if err := copier.CopyWithOption(&out, &r, copyOption); err != nil {
		return RefundResultResponse{}, errs.Wrap(err, "failed to map refund result")
	}
	return out, nil
}

func FromInstruction(in cancellation.Instruction) (InstructionResponse, error) {
	var out InstructionResponse
	if err := copier.CopyWithOption(&out, &in, copyOption); err != nil {
		return InstructionResponse{}, errs.Wrap(err, "failed to map instruction")
	}
	return out, nil
}

func FromQuoteView(v *queries.QuoteView) (*QuoteResponse, error) {
	result, err := FromRefundResult(v.Result)
	if err != nil {
		return nil, err
	}
	out := &QuoteResponse{Result: result, Instructions: make([]InstructionResponse, 0, len(v.Instructions))}
	for _, in := range v.Instructions {
		mapped, err := FromInstruction(in)
		if err != nil {
			return nil, err
		}
		out.Instructions = append(out.Instructions, mapped)
	}
	return out, nil
}

func FromQueuedInstruction(rec shared.InstructionRecord) QueuedInstructionResponse {
	return QueuedInstructionResponse{
		ID:        rec.ID,
		Kind:      rec.Instruction.Kind.String(),
		Amount:    NewAmount(rec.Instruction.Amount),
		Status:    string(rec.Status),
		Attempts:  rec.Attempts,
		LastError: rec.LastError,
		SentAt:    rec.SentAt,
	}
}

func FromCancellationView(v *queries.CancellationView) (*CancellationResponse, error) {
	result, err := FromRefundResult(v.Result)
	if err != nil {
		return nil, err
	}
	out := &CancellationResponse{
		ID:           v.ID,
		ActorID:      v.ActorID,
		Reason:       v.Reason,
		Result:       result,
		Instructions: make([]QueuedInstructionResponse, 0, len(v.Instructions)),
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
	for _, rec := range v.Instructions {
		out.Instructions = append(out.Instructions, FromQueuedInstruction(rec))
	}
	return out, nil
}
