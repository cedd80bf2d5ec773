package booking

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

type VerificationStatus string

const (
	VerificationNotRequired VerificationStatus = "not_required"
	VerificationRequired    VerificationStatus = "required"
	VerificationSubmitted   VerificationStatus = "submitted"
	VerificationApproved    VerificationStatus = "approved"
	VerificationRejected    VerificationStatus = "rejected"
)

func (v VerificationStatus) String() string {
	return string(v)
}

func (v VerificationStatus) IsValid() bool {
	switch v {
	case VerificationNotRequired, VerificationRequired, VerificationSubmitted,
		VerificationApproved, VerificationRejected:
		return true
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentCaptured   PaymentStatus = "captured"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

func (p PaymentStatus) String() string {
	return string(p)
}

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentAuthorized, PaymentCaptured, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}

type TripStatus string

const (
	TripNotStarted        TripStatus = "not_started"
	TripInProgress        TripStatus = "in_progress"
	TripEnded             TripStatus = "ended"
	TripClosedWithoutTrip TripStatus = "closed_without_trip"
)

func (t TripStatus) String() string {
	return string(t)
}

func (t TripStatus) IsValid() bool {
	switch t {
	case TripNotStarted, TripInProgress, TripEnded, TripClosedWithoutTrip:
		return true
	default:
		return false
	}
}

type LifecycleState string

const (
	StatePending   LifecycleState = "PENDING"
	StateVerified  LifecycleState = "VERIFIED"
	StateOnHold    LifecycleState = "ON_HOLD"
	StateConfirmed LifecycleState = "CONFIRMED"
	StateActive    LifecycleState = "ACTIVE"
	StateCompleted LifecycleState = "COMPLETED"
	StateNoShow    LifecycleState = "NO_SHOW"
	StateCancelled LifecycleState = "CANCELLED"
	StateIssues    LifecycleState = "ISSUES"
)

func (s LifecycleState) String() string {
	return string(s)
}

// AllowsCancellation reports whether a booking in this state may still be cancelled.
func (s LifecycleState) AllowsCancellation() bool {
	switch s {
	case StateActive, StateCompleted, StateCancelled, StateNoShow:
		return false
	default:
		return true
	}
}

func (s LifecycleState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateNoShow:
		return true
	default:
		return false
	}
}
