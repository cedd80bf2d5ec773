package request

import (
	"strings"
	"time"

	"booking-reconciler/internal/domain/booking"
	"booking-reconciler/internal/usecase/commands"
)

// InstantQuery carries the optional ?at= evaluation instant.
type InstantQuery struct {
	At *time.Time `form:"at" time_format:"2006-01-02T15:04:05Z07:00"`
}

type CancelBookingRequest struct {
	RequestedAt *time.Time `json:"requestedAt,omitempty"`
	Reason      *string    `json:"reason,omitempty" binding:"omitempty,max=500"`
}

func (r CancelBookingRequest) GetReason() *string {
	if r.Reason == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.Reason)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (r CancelBookingRequest) ToCommand() commands.CancelBookingRequest {
	return commands.CancelBookingRequest{
		RequestedAt: r.RequestedAt,
		Reason:      r.GetReason(),
	}
}

type DepositHoldRequest struct {
	AmountCents *int64 `json:"amountCents" binding:"required,min=0"`
}

func (r DepositHoldRequest) Amount() (booking.Money, error) {
	return booking.NewMoneyFromCents(*r.AmountCents)
}
