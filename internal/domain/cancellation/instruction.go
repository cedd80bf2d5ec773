package cancellation

import "booking-reconciler/internal/domain/booking"

type InstructionKind string

const (
	InstructionCardRefund     InstructionKind = "card_refund"
	InstructionCreditRestore  InstructionKind = "credit_restore"
	InstructionBonusRestore   InstructionKind = "bonus_restore"
	InstructionDepositRelease InstructionKind = "deposit_release"
)

func (k InstructionKind) String() string {
	return string(k)
}

func (k InstructionKind) IsValid() bool {
	switch k {
	case InstructionCardRefund, InstructionCreditRestore, InstructionBonusRestore, InstructionDepositRelease:
		return true
	default:
		return false
	}
}

// Instruction is one money movement for the payment gateway or the ledger.
// WalletPortion and CardPortion are only set for deposit releases.
type Instruction struct {
	Kind          InstructionKind
	Amount        booking.Money
	WalletPortion booking.Money
	CardPortion   booking.Money
}

// Instructions translates the result into at most four movements. Zero amounts
// produce no instruction.
func (r RefundResult) Instructions() []Instruction {
	out := make([]Instruction, 0, 4)

	if card := r.CardRefund.Add(r.ValidationChargeRefund); !card.IsZero() {
		out = append(out, Instruction{Kind: InstructionCardRefund, Amount: card})
	}
	if !r.CreditsRestored.IsZero() {
		out = append(out, Instruction{Kind: InstructionCreditRestore, Amount: r.CreditsRestored})
	}
	if !r.BonusRestored.IsZero() {
		out = append(out, Instruction{Kind: InstructionBonusRestore, Amount: r.BonusRestored})
	}
	if release := r.DepositFromWallet.Add(r.DepositFromCard); !release.IsZero() {
		out = append(out, r.DepositReleaseInstruction())
	}
	return out
}

func (r RefundResult) DepositReleaseInstruction() Instruction {
	return Instruction{
		Kind:          InstructionDepositRelease,
		Amount:        r.DepositFromWallet.Add(r.DepositFromCard),
		WalletPortion: r.DepositFromWallet,
		CardPortion:   r.DepositFromCard,
	}
}
