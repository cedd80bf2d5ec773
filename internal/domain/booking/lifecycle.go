package booking

import "time"

const DefaultVerificationGrace = 24 * time.Hour

type LifecycleRules struct {
	// VerificationGrace is how long after creation a required verification may
	// stay unsubmitted before the booking goes on hold.
	VerificationGrace time.Duration
}

func DefaultLifecycleRules() LifecycleRules {
	return LifecycleRules{VerificationGrace: DefaultVerificationGrace}
}

// ResolveLifecycle collapses the independent booking signals into one state.
// Checks run in precedence order and the first match wins. Unknown enum values
// count as "not yet true".
func ResolveLifecycle(s Snapshot, at time.Time, rules LifecycleRules) LifecycleState {
	switch {
	case s.Status == StatusCancelled:
		return StateCancelled
	case isNoShow(s, at):
		return StateNoShow
	case hasIssues(s):
		return StateIssues
	case isOnHold(s, at, rules):
		return StateOnHold
	case s.TripEndedAt != nil:
		return StateCompleted
	case s.TripStartedAt != nil:
		return StateActive
	case isConfirmed(s):
		return StateConfirmed
	case s.Status == StatusPending && s.Verification == VerificationApproved:
		return StateVerified
	default:
		return StatePending
	}
}

func isNoShow(s Snapshot, at time.Time) bool {
	return s.TripStartedAt == nil &&
		s.Trip == TripClosedWithoutTrip &&
		!s.ReturnAt.IsZero() &&
		at.After(s.ReturnAt)
}

func hasIssues(s Snapshot) bool {
	return s.Payment == PaymentFailed ||
		s.Verification == VerificationRejected ||
		s.OpenClaim
}

func isOnHold(s Snapshot, at time.Time, rules LifecycleRules) bool {
	if s.Verification != VerificationRequired || s.documentsSubmitted() {
		return false
	}
	deadline := s.CreatedAt.Add(rules.VerificationGrace)
	return !at.Before(deadline)
}

func isConfirmed(s Snapshot) bool {
	if s.Status != StatusConfirmed || s.Payment != PaymentCaptured {
		return false
	}
	return s.Verification == VerificationApproved || s.Verification == VerificationNotRequired
}
